// Package decode implements the decoder registry (C6) and the built-in
// leaf/composite decoders (C7): turning a navigated node into a typed Go
// value, accumulating errors in a result.R rather than panicking or
// returning a bare error.
//
// Object decoding's "reflection-like capability the host supplies"
// (spec.md §9 Design Notes) is simply Go's own reflect package, the same
// way the teacher (openconfig/goyang) walks struct fields by name in
// pkg/yang/find.go.
package decode

import (
	"reflect"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/path"
	"github.com/ikalinin1/gestalt/result"
)

// Priority orders decoders within a single matching type, highest first.
// Ordering matches spec.md §4.6: LOWEST < LOW < MEDIUM < HIGH < VERY_HIGH.
type Priority int

const (
	LOWEST Priority = iota
	LOW
	MEDIUM
	HIGH
	VERY_HIGH
)

// Decoder turns a node into a Go value of typ. Decoders are pure functions
// of (path, node, type, registry) — spec.md §5 "Shared resources": no
// decoder may hold state across calls, and a decoder must never call
// another decoder directly; it recurses through Registry.DecodeNode so
// priority ordering applies recursively (spec.md §4.7 closing line).
type Decoder interface {
	Name() string
	Priority() Priority
	Matches(typ reflect.Type) bool
	Decode(p []path.Token, n *node.Node, typ reflect.Type, reg *Registry) result.R[interface{}]
}
