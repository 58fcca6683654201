package loader

import (
	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/path"
	"github.com/ikalinin1/gestalt/result"
	"github.com/ikalinin1/gestalt/source"
)

// KeyValueLoader builds one fragment from a list-shaped source (env, map)
// by tokenizing each key through Mapper and inserting the resulting leaf
// into a shared tree, merging insertions together the same way
// manager.Manager merges whole-source fragments (later entries win on
// conflict, per spec.md §8 S7's merge precedence).
type KeyValueLoader struct {
	Mapper *path.Registry
}

// NewKeyValueLoader builds a KeyValueLoader; a nil mapper uses
// path.NewRegistry()'s defaults.
func NewKeyValueLoader(mapper *path.Registry) *KeyValueLoader {
	if mapper == nil {
		mapper = path.NewRegistry()
	}
	return &KeyValueLoader{Mapper: mapper}
}

func (*KeyValueLoader) Accepts(format string) bool { return format == "keyvalue" }

func (l *KeyValueLoader) Load(src source.Source) result.R[*node.Node] {
	if !src.HasList() {
		return result.Invalid[*node.Node](result.NewError(result.SourceLoadFailure, result.ERROR,
			"source %q has no key/value list to load", src.Name()))
	}
	entries, err := src.LoadList()
	if err != nil {
		return result.Invalid[*node.Node](result.NewError(result.SourceLoadFailure, result.ERROR,
			"loading source %q: %v", src.Name(), err))
	}
	return buildFromEntries(l.Mapper, src.Name(), entries)
}

func buildFromEntries(mapper *path.Registry, sourceName string, entries []source.KeyValue) result.R[*node.Node] {
	var tree *node.Node
	var errs []result.ValidationError
	for _, kv := range entries {
		toks := mapper.Tokenize(sourceName, kv.Key)
		tokens, ok := toks.Value()
		if !ok {
			errs = append(errs, toks.Errors()...)
			continue
		}
		frag := insertPath(tokens, kv.Value)
		mr := node.Merge(tree, frag)
		errs = append(errs, mr.Errors()...)
		if v, ok := mr.Value(); ok {
			tree = v
		}
	}
	if tree == nil {
		tree = node.NewMap(nil)
	}
	return result.Of(&tree, errs...)
}

// insertPath builds the minimal tree fragment that places value at the
// location described by tokens: Object tokens nest maps, Array tokens
// nest arrays sized just large enough to hold the given index, with every
// other slot left as an explicit None.
func insertPath(tokens []path.Token, value string) *node.Node {
	if len(tokens) == 0 {
		return node.NewLeafString(value)
	}
	head, rest := tokens[0], tokens[1:]
	child := insertPath(rest, value)
	switch head.Kind {
	case path.Array:
		elems := make([]*node.Node, head.Index+1)
		elems[head.Index] = child
		return node.NewArray(elems)
	default:
		return node.NewMap(map[string]*node.Node{head.Name: child})
	}
}
