// Package postprocess implements the post-processor chain (C5): a
// priority-ordered set of tree rewriters run depth-first at generation-build
// time, including the bounded-recursion substitution engine and the
// TemporarySecret processor.
//
// The substitution engine's bounded, depth-tracked, cycle-checked
// resolution of one named thing in terms of another is grounded on the
// teacher's (openconfig/goyang) pkg/yang/types.go Typedef.resolve (which
// resolves a typedef in terms of its base type, tracking a dictionary to
// avoid infinite regress) and pkg/yang/identity.go's explicit circular-
// dependency error construction.
package postprocess

import (
	"sort"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/path"
	"github.com/ikalinin1/gestalt/result"
)

// Processor rewrites one node of the tree, given its path. Implementations
// may return n unchanged (result.Valid(n)) to be a no-op at that location.
type Processor interface {
	Name() string
	Priority() int
	Process(p []path.Token, n *node.Node) result.R[*node.Node]
}

// TreeAware is implemented by processors that need a late-bound reference
// to the whole tree being built (e.g. the substitution engine's "node"
// transform). Chain.Run installs the reference fresh before every
// generation build, so no processor keeps a reference to an earlier
// generation's tree.
type TreeAware interface {
	SetTree(root *node.Node)
}

// Chain runs a priority-ordered (higher first) list of Processors
// depth-first over a tree.
type Chain struct {
	processors []Processor
}

// NewChain builds a Chain from the given processors, sorted by descending
// priority. Ties keep insertion order (stable sort), matching the registry
// tie-break convention of spec.md §4.6 ("first-added wins").
func NewChain(processors ...Processor) *Chain {
	c := &Chain{processors: append([]Processor(nil), processors...)}
	sort.SliceStable(c.processors, func(i, j int) bool {
		return c.processors[i].Priority() > c.processors[j].Priority()
	})
	return c
}

// Run applies the chain to tree, depth-first, and returns the rewritten
// tree. Every TreeAware processor is (re)bound to tree before the walk
// starts, so a processor added earlier that needs whole-tree lookups (e.g.
// substitution's "node" transform) always sees the generation currently
// being built, never a stale one.
func (c *Chain) Run(tree *node.Node) result.R[*node.Node] {
	for _, p := range c.processors {
		if ta, ok := p.(TreeAware); ok {
			ta.SetTree(tree)
		}
	}
	return c.runAt(nil, tree)
}

func (c *Chain) runAt(p []path.Token, n *node.Node) result.R[*node.Node] {
	if n == nil {
		return result.Valid[*node.Node](nil)
	}
	var errs []result.ValidationError
	cur := n

	switch n.Kind() {
	case node.KindArray:
		elems := n.Elements()
		out := make([]*node.Node, len(elems))
		for i, e := range elems {
			if e == nil {
				continue
			}
			sub := c.runAt(appendToken(p, path.NewArray(uint32(i))), e)
			errs = append(errs, sub.Errors()...)
			v, _ := sub.Value()
			out[i] = v
		}
		cur = node.NewArray(out)
	case node.KindMap:
		keys := n.Keys()
		entries := make(map[string]*node.Node, len(keys))
		for _, k := range keys {
			child, _ := n.GetKey(k)
			sub := c.runAt(appendToken(p, path.NewObject(k)), child)
			errs = append(errs, sub.Errors()...)
			v, _ := sub.Value()
			entries[k] = v
		}
		cur = node.NewMap(entries)
	}

	for _, proc := range c.processors {
		pr := proc.Process(p, cur)
		errs = append(errs, pr.Errors()...)
		if v, ok := pr.Value(); ok {
			cur = v
		}
	}
	return result.Of(&cur, errs...)
}

// appendToken extends p with t without aliasing p's backing array across
// sibling recursive calls.
func appendToken(p []path.Token, t path.Token) []path.Token {
	out := make([]path.Token, len(p), len(p)+1)
	copy(out, p)
	return append(out, t)
}
