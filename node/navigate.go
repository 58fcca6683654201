package node

import (
	"github.com/ikalinin1/gestalt/path"
	"github.com/ikalinin1/gestalt/result"
)

// Navigate walks tokens from root, returning the node at that location.
// A missing key or index yields a MISSING_VALUE-level error (the location
// simply isn't populated); a token whose kind doesn't match the node
// variant it addresses (e.g. an Object token against an Array node) yields
// an ERROR-level type-mismatch error, per spec.md §4.2.
func Navigate(root *Node, tokens []path.Token) result.R[*Node] {
	cur := root
	for i, tok := range tokens {
		if cur == nil {
			return result.Invalid[*Node](result.NewError(
				result.NoResultsFoundForNode, result.MISSING_VALUE,
				"%s: no node present", path.Render(tokens[:i+1])))
		}
		switch tok.Kind {
		case path.Object:
			if cur.Kind() != KindMap {
				return result.Invalid[*Node](result.NewError(
					result.DecodingExpectedMap, result.ERROR,
					"%s: expected a map, found %s", path.Render(tokens[:i+1]), cur.Kind()))
			}
			next, ok := cur.GetKey(tok.Name)
			if !ok {
				return result.Invalid[*Node](result.NewError(
					result.NoResultsFoundForNode, result.MISSING_VALUE,
					"%s: no such key", path.Render(tokens[:i+1])))
			}
			cur = next
		case path.Array:
			if cur.Kind() != KindArray {
				return result.Invalid[*Node](result.NewError(
					result.DecodingExpectedArray, result.ERROR,
					"%s: expected an array, found %s", path.Render(tokens[:i+1]), cur.Kind()))
			}
			next, ok := cur.GetIndex(tok.Index)
			if !ok {
				return result.Invalid[*Node](result.NewError(
					result.ArrayMissingIndex, result.MISSING_VALUE,
					"%s: missing index %d", path.Render(tokens[:i+1]), tok.Index))
			}
			cur = next
		default:
			return result.Invalid[*Node](result.NewError(
				result.FailedToTokenize, result.ERROR, "unknown token kind %v", tok.Kind))
		}
	}
	if cur == nil {
		return result.Invalid[*Node](result.NewError(
			result.NoResultsFoundForNode, result.MISSING_VALUE, "no node present at %s", path.Render(tokens)))
	}
	return result.Valid(cur)
}

// NavigateString is a convenience wrapper that tokenizes s before
// navigating, used by callers that hold a raw path string rather than a
// pre-tokenized one.
func NavigateString(root *Node, reg *path.Registry, s string) result.R[*Node] {
	toks := reg.Tokenize(s, s)
	return result.FlatMap(toks, func(tokens []path.Token) result.R[*Node] {
		return Navigate(root, tokens)
	})
}
