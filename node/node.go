// Package node implements the configuration node tree (C2 in the design):
// a tagged union of leaf/array/map nodes with merge and navigation support.
//
// The shape is grounded on the teacher's (openconfig/goyang) pkg/yang/entry.go
// Entry struct, which likewise carries leaf-only and directory-only fields
// side by side on one struct, switching on a Kind field, rather than using a
// Go interface-per-variant design. That shape was kept here because it lets
// Merge and the rollup walk mutate-then-freeze cheaply the same way
// Entry.Dir does, and because it is what the teacher itself demonstrates for
// "one node type, several shapes."
package node

import "strings"

// Kind identifies which of the three node variants a Node holds.
type Kind int

const (
	KindLeaf Kind = iota
	KindArray
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "Leaf"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	default:
		return "Unknown"
	}
}

// MetaValue is one opaque metadata value attached to a leaf, rolled up into
// enclosing containers unless its key is registered as non-rolling
// (spec.md §3 invariant 4, e.g. "isSecret").
type MetaValue struct {
	Value interface{}
}

// nonRollingMetadata lists metadata keys that must not propagate from a
// leaf to its enclosing containers during rollup.
var nonRollingMetadata = map[string]bool{
	"isSecret": true,
}

// RegisterNonRollingMetadata marks a metadata key as non-rolling. "isSecret"
// (set by NewSecretLeaf for the TemporarySecret post-processor) is already
// registered above, so it never leaks into parent rollups.
func RegisterNonRollingMetadata(key string) {
	nonRollingMetadata[key] = true
}

func isRolling(key string) bool {
	return !nonRollingMetadata[key]
}

type mapEntry struct {
	displayKey string
	node       *Node
}

// Node is a tagged union: exactly one of the three variants below is
// meaningful, selected by Kind. Once a Node is merged into a frozen
// generation it must not be mutated in place (spec.md §3 invariant 1);
// every operation in this package that "changes" a node returns a new one.
type Node struct {
	kind Kind

	// leaf fields
	leafValue    *string
	leafMetadata map[string][]MetaValue
	secret       *secretAccessor

	// array fields; a nil element at index i represents an explicit None.
	elements []*Node

	// map fields, keyed by canonical (lowercased) key.
	entries map[string]mapEntry
}

// NewLeaf builds a leaf node. value is nil for a leaf with no value (still
// distinct from the leaf being entirely absent from its parent).
func NewLeaf(value *string, metadata map[string][]MetaValue) *Node {
	md := map[string][]MetaValue{}
	for k, v := range metadata {
		md[k] = append([]MetaValue(nil), v...)
	}
	return &Node{kind: KindLeaf, leafValue: value, leafMetadata: md}
}

// NewLeafString is a convenience constructor for the common case of a
// present, metadata-less string leaf.
func NewLeafString(value string) *Node {
	return NewLeaf(&value, nil)
}

// NewArray builds an array node. Entries may contain nil to represent an
// explicit sparse slot (spec.md §3 invariant 2).
func NewArray(elements []*Node) *Node {
	return &Node{kind: KindArray, elements: append([]*Node(nil), elements...)}
}

// NewMap builds a map node. Keys are normalized to their canonical
// lowercase form for lookup while the originally supplied case is retained
// for display (spec.md §3 invariant 5, §9 open question (b)).
func NewMap(entries map[string]*Node) *Node {
	n := &Node{kind: KindMap, entries: map[string]mapEntry{}}
	for k, v := range entries {
		n.entries[canonical(k)] = mapEntry{displayKey: k, node: v}
	}
	return n
}

func canonical(key string) string { return strings.ToLower(key) }

// Kind returns which variant n holds.
func (n *Node) Kind() Kind { return n.kind }

// Value returns a leaf's opaque string value. ok is false for a non-leaf
// node or a leaf with no value (spec.md §3: "Leaf { value: Option<string>,
// ...}"). For a TemporarySecret-wrapped leaf (NewSecretLeaf), each call
// consumes one of its remaining reads; once exhausted it reports absent
// forever after, per spec.md §4.5 scenario S9.
func (n *Node) Value() (string, bool) {
	if n == nil || n.kind != KindLeaf {
		return "", false
	}
	if n.secret != nil {
		return n.secret.read()
	}
	if n.leafValue == nil {
		return "", false
	}
	return *n.leafValue, true
}

// Metadata returns the raw metadata map of a leaf node (nil for non-leaves).
func (n *Node) Metadata() map[string][]MetaValue {
	if n == nil || n.kind != KindLeaf {
		return nil
	}
	return n.leafMetadata
}

// Size returns the number of slots (array) or entries (map). It is 0 for a
// leaf, matching spec.md §4.2's "size" operation.
func (n *Node) Size() int {
	if n == nil {
		return 0
	}
	switch n.kind {
	case KindArray:
		return len(n.elements)
	case KindMap:
		return len(n.entries)
	default:
		return 0
	}
}

// GetIndex returns the element at array index i. ok is false if n is not an
// array, i is out of range, or the slot is an explicit None.
func (n *Node) GetIndex(i uint32) (*Node, bool) {
	if n == nil || n.kind != KindArray || int(i) >= len(n.elements) {
		return nil, false
	}
	e := n.elements[i]
	return e, e != nil
}

// Elements returns the raw (possibly sparse) backing slice of an array
// node. The caller must not mutate the returned slice.
func (n *Node) Elements() []*Node {
	if n == nil || n.kind != KindArray {
		return nil
	}
	return n.elements
}

// GetKey looks up a map entry by its case-insensitive key.
func (n *Node) GetKey(key string) (*Node, bool) {
	if n == nil || n.kind != KindMap {
		return nil, false
	}
	e, ok := n.entries[canonical(key)]
	if !ok {
		return nil, false
	}
	return e.node, true
}

// Keys returns the display-case keys of a map node, in no particular order.
func (n *Node) Keys() []string {
	if n == nil || n.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(n.entries))
	for _, e := range n.entries {
		keys = append(keys, e.displayKey)
	}
	return keys
}

// DisplayKey returns the original (non-normalized) spelling of key as it was
// inserted, or key itself if no entry matches — used so error messages
// never silently relabel a user's casing (spec.md §9 open question (b)).
func (n *Node) DisplayKey(key string) string {
	if n == nil || n.kind != KindMap {
		return key
	}
	if e, ok := n.entries[canonical(key)]; ok {
		return e.displayKey
	}
	return key
}
