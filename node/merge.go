package node

import "github.com/ikalinin1/gestalt/result"

// Merge combines a and b into a new node: b wins on scalar (leaf) conflict,
// maps union their keys (b's entry wins on a shared key), and arrays merge
// index-by-index (b's present slot overrides a's; an explicit None in b
// preserves a's slot), per spec.md §4.2. Merging two nodes of different
// kinds is an ERROR-level MergeConflict; a nil a or b is treated as "no
// contribution" rather than a conflict, since that is how an absent
// fragment behaves when folded into the accumulated tree.
func Merge(a, b *Node) result.R[*Node] {
	if a == nil {
		return result.Valid(b)
	}
	if b == nil {
		return result.Valid(a)
	}
	if a.Kind() != b.Kind() {
		return result.Invalid[*Node](result.NewError(
			result.MergeConflict, result.ERROR,
			"cannot merge %s into %s", b.Kind(), a.Kind()))
	}
	switch a.Kind() {
	case KindLeaf:
		return mergeLeaf(a, b)
	case KindArray:
		return mergeArray(a, b)
	case KindMap:
		return mergeMap(a, b)
	default:
		return result.Valid(b)
	}
}

func mergeLeaf(a, b *Node) result.R[*Node] {
	md := map[string][]MetaValue{}
	for k, v := range a.leafMetadata {
		md[k] = append([]MetaValue(nil), v...)
	}
	for k, v := range b.leafMetadata {
		md[k] = append(md[k], v...)
	}
	value := a.leafValue
	if b.leafValue != nil {
		value = b.leafValue
	}
	return result.Valid(NewLeaf(value, md))
}

func mergeArray(a, b *Node) result.R[*Node] {
	size := len(a.elements)
	if len(b.elements) > size {
		size = len(b.elements)
	}
	out := make([]*Node, size)
	copy(out, a.elements)
	for i, e := range b.elements {
		if e != nil {
			out[i] = e
		}
		// an explicit None in b preserves a's slot (spec.md §4.2)
	}
	return result.Valid(NewArray(out))
}

func mergeMap(a, b *Node) result.R[*Node] {
	merged := map[string]*Node{}
	display := map[string]string{}
	for k, e := range a.entries {
		merged[k] = e.node
		display[k] = e.displayKey
	}
	var errs []result.ValidationError
	for k, e := range b.entries {
		if existing, ok := merged[k]; ok {
			sub := Merge(existing, e.node)
			errs = append(errs, sub.Errors()...)
			if v, ok := sub.Value(); ok {
				merged[k] = v
			}
		} else {
			merged[k] = e.node
		}
		display[k] = e.displayKey // b's display casing wins, matching its value winning
	}
	out := &Node{kind: KindMap, entries: map[string]mapEntry{}}
	for k, n := range merged {
		out.entries[k] = mapEntry{displayKey: display[k], node: n}
	}
	return result.Of(&out, errs...)
}
