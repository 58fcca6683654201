// Package path implements the dotted/bracketed path grammar used to address
// locations in a gestalt configuration tree (C1 in the design).
//
// A path such as "servers[1].db.port" tokenizes into:
//
//	Object("servers"), Array(1), Object("db"), Object("port")
package path

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes the two token shapes a path can carry.
type Kind int

const (
	// Object addresses a named entry of a map node.
	Object Kind = iota
	// Array addresses an indexed slot of an array node.
	Array
)

func (k Kind) String() string {
	switch k {
	case Object:
		return "Object"
	case Array:
		return "Array"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is a single step in a path: either a map key or an array index.
type Token struct {
	Kind Kind
	Name string // valid when Kind == Object
	Index uint32 // valid when Kind == Array
}

// NewObject builds an Object token.
func NewObject(name string) Token { return Token{Kind: Object, Name: name} }

// NewArray builds an Array token.
func NewArray(i uint32) Token { return Token{Kind: Array, Index: i} }

func (t Token) String() string {
	if t.Kind == Array {
		return fmt.Sprintf("[%d]", t.Index)
	}
	return t.Name
}

// Render reassembles a token sequence into its canonical string form:
// "." between object tokens, "[i]" immediately after the object token it
// qualifies. This is the inverse of Tokenize, used by testable property 1
// in spec.md §8.
func Render(tokens []Token) string {
	var b strings.Builder
	for i, t := range tokens {
		switch t.Kind {
		case Array:
			b.WriteString("[")
			b.WriteString(strconv.FormatUint(uint64(t.Index), 10))
			b.WriteString("]")
		case Object:
			if i > 0 {
				b.WriteString(".")
			}
			b.WriteString(t.Name)
		}
	}
	return b.String()
}

// Join appends a field name to an existing rendered path, giving
// "path + \".\" + field_name" (just field_name when base is empty).
func Join(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}
