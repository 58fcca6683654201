package node

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/openconfig/gnmi/errdiff"

	"github.com/ikalinin1/gestalt/path"
)

func TestNavigateHappyPath(t *testing.T) {
	tree := NewMap(map[string]*Node{
		"Db": NewMap(map[string]*Node{
			"port": NewLeafString("5432"),
		}),
	})
	toks := []path.Token{path.NewObject("db"), path.NewObject("port")}
	got := Navigate(tree, toks)
	n, ok := got.Value()
	if !ok {
		t.Fatalf("Navigate failed: %v", got.Errors())
	}
	v, ok := n.Value()
	if !ok || v != "5432" {
		t.Errorf("Navigate(db.port) = %v, %v, want 5432, true", v, ok)
	}
	// Case-insensitive lookup (invariant 5), but display case preserved.
	if dk := tree.DisplayKey("db"); dk != "Db" {
		t.Errorf("DisplayKey(db) = %q, want Db", dk)
	}
}

func TestNavigateMissingAndMismatch(t *testing.T) {
	tree := NewMap(map[string]*Node{
		"db": NewArray([]*Node{NewLeafString("x")}),
	})

	missingKey := Navigate(tree, []path.Token{path.NewObject("nope")})
	if missingKey.HasResult() {
		t.Errorf("Navigate(nope) unexpectedly succeeded")
	}
	if diff := errdiff.Substring(missingKey.Errors()[0], "no such key"); diff != "" {
		t.Error(diff)
	}

	typeMismatch := Navigate(tree, []path.Token{path.NewObject("db"), path.NewObject("port")})
	if typeMismatch.HasResult() {
		t.Errorf("Navigate(db.port) unexpectedly succeeded against an array")
	}
	if diff := errdiff.Substring(typeMismatch.Errors()[0], "expected a map"); diff != "" {
		t.Error(diff)
	}

	missingIndex := Navigate(tree, []path.Token{path.NewObject("db"), path.NewArray(5)})
	if missingIndex.HasResult() {
		t.Errorf("Navigate(db[5]) unexpectedly succeeded")
	}
	if diff := errdiff.Substring(missingIndex.Errors()[0], "missing index 5"); diff != "" {
		t.Error(diff)
	}
}

func TestMergePrecedence(t *testing.T) {
	// spec.md §8 scenario S7.
	source1 := NewMap(map[string]*Node{
		"db": NewMap(map[string]*Node{"port": NewLeafString("1")}),
	})
	source2 := NewMap(map[string]*Node{
		"db": NewMap(map[string]*Node{
			"port": NewLeafString("2"),
			"host": NewLeafString("h"),
		}),
	})
	merged := Merge(source1, source2)
	tree, ok := merged.Value()
	if !ok {
		t.Fatalf("Merge failed: %v", merged.Errors())
	}
	port := mustNavigate(t, tree, "db", "port")
	if v, _ := port.Value(); v != "2" {
		t.Errorf("db.port = %q, want 2", v)
	}
	host := mustNavigate(t, tree, "db", "host")
	if v, _ := host.Value(); v != "h" {
		t.Errorf("db.host = %q, want h", v)
	}
}

func TestMergeArraySparseNonePreserves(t *testing.T) {
	a := NewArray([]*Node{NewLeafString("a0"), NewLeafString("a1")})
	b := NewArray([]*Node{nil, NewLeafString("b1")})
	merged := Merge(a, b)
	tree, ok := merged.Value()
	if !ok {
		t.Fatalf("Merge failed: %v", merged.Errors())
	}
	if v, _ := elemValue(tree, 0); v != "a0" {
		t.Errorf("index 0 = %q, want a0 (b's None should preserve a's slot)", v)
	}
	if v, _ := elemValue(tree, 1); v != "b1" {
		t.Errorf("index 1 = %q, want b1 (b's value should win)", v)
	}
}

func TestMergeDifferentKindsIsError(t *testing.T) {
	a := NewLeafString("x")
	b := NewArray(nil)
	merged := Merge(a, b)
	if merged.HasResult() {
		t.Errorf("Merge(leaf, array) unexpectedly succeeded")
	}
	if diff := errdiff.Substring(merged.Errors()[0], "cannot merge"); diff != "" {
		t.Error(diff)
	}
}

func TestMetadataRollupSkipsNonRolling(t *testing.T) {
	leaf := NewLeaf(strPtr("secret-value"), map[string][]MetaValue{
		"isSecret": {{Value: true}},
		"source":   {{Value: "vault"}},
	})
	tree := NewMap(map[string]*Node{"password": leaf})
	rolled := Rollup(tree)
	if _, ok := rolled["isSecret"]; ok {
		t.Errorf("Rollup leaked non-rolling metadata key isSecret")
	}
	if _, ok := rolled["source"]; !ok {
		t.Errorf("Rollup dropped rolling metadata key source")
	}
}

func TestNodeTreeEquality(t *testing.T) {
	a := NewMap(map[string]*Node{"k": NewLeafString("v")})
	b := NewMap(map[string]*Node{"k": NewLeafString("v")})
	if diff := cmp.Diff(dump(a), dump(b)); diff != "" {
		t.Errorf("equivalent trees differ (-a +b):\n%s", diff)
	}
}

// dump flattens a tree to a comparable plain-data shape for go-cmp, since
// Node itself has unexported fields.
func dump(n *Node) interface{} {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case KindLeaf:
		v, ok := n.Value()
		if !ok {
			return nil
		}
		return v
	case KindArray:
		out := make([]interface{}, len(n.Elements()))
		for i, e := range n.Elements() {
			out[i] = dump(e)
		}
		return out
	case KindMap:
		out := map[string]interface{}{}
		for _, k := range n.Keys() {
			v, _ := n.GetKey(k)
			out[k] = dump(v)
		}
		return out
	}
	return nil
}

func mustNavigate(t *testing.T, root *Node, segments ...string) *Node {
	t.Helper()
	toks := make([]path.Token, len(segments))
	for i, s := range segments {
		toks[i] = path.NewObject(s)
	}
	got := Navigate(root, toks)
	n, ok := got.Value()
	if !ok {
		t.Fatalf("Navigate(%v) failed: %v", segments, got.Errors())
	}
	return n
}

func elemValue(n *Node, i uint32) (string, bool) {
	e, ok := n.GetIndex(i)
	if !ok {
		return "", false
	}
	return e.Value()
}

func strPtr(s string) *string { return &s }
