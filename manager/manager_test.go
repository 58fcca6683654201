package manager

import (
	"testing"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/path"
)

func TestBuildMergesInSourceOrder(t *testing.T) {
	// spec.md §8 scenario S7.
	m := New(nil)
	m.AddNode("source1", node.NewMap(map[string]*node.Node{
		"db": node.NewMap(map[string]*node.Node{"port": node.NewLeafString("1")}),
	}))
	m.AddNode("source2", node.NewMap(map[string]*node.Node{
		"db": node.NewMap(map[string]*node.Node{
			"port": node.NewLeafString("2"),
			"host": node.NewLeafString("h"),
		}),
	}))
	out := m.Build()
	if !out.HasResult() {
		t.Fatalf("Build failed: %v", out.Errors())
	}
	port := m.Navigate([]path.Token{path.NewObject("db"), path.NewObject("port")})
	n, ok := port.Value()
	if !ok {
		t.Fatalf("Navigate(db.port) failed: %v", port.Errors())
	}
	if v, _ := n.Value(); v != "2" {
		t.Errorf("db.port = %q, want 2 (source2 wins)", v)
	}
}

func TestReloadNodeReplacesInPlace(t *testing.T) {
	m := New(nil)
	m.AddNode("source1", node.NewMap(map[string]*node.Node{"k": node.NewLeafString("v1")}))
	m.Build()
	if g := m.Generation(); g != 1 {
		t.Fatalf("Generation() = %d, want 1", g)
	}

	m.ReloadNode("source1", node.NewMap(map[string]*node.Node{"k": node.NewLeafString("v2")}))
	m.Build()
	if g := m.Generation(); g != 2 {
		t.Fatalf("Generation() = %d, want 2", g)
	}
	out := m.Navigate([]path.Token{path.NewObject("k")})
	n, ok := out.Value()
	if !ok {
		t.Fatalf("Navigate(k) failed: %v", out.Errors())
	}
	if v, _ := n.Value(); v != "v2" {
		t.Errorf("k = %q, want v2 (reload should replace, not append)", v)
	}
}

func TestReloadNotifiesListeners(t *testing.T) {
	m := New(nil)
	var seen []uint64
	m.OnReload(func(gen uint64) { seen = append(seen, gen) })
	m.AddNode("s", node.NewLeafString("v"))
	m.Build()
	m.Build()
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("listener saw %v, want [1 2]", seen)
	}
}

func TestBeforePublishRunsBeforeGenerationSwap(t *testing.T) {
	m := New(nil)
	var genAtBeforePublish uint64
	m.OnBeforePublish(func() { genAtBeforePublish = m.Generation() })
	m.AddNode("s", node.NewLeafString("v"))
	m.Build()
	if genAtBeforePublish != 0 {
		t.Errorf("before-publish listener saw generation %d, want 0 (old generation)", genAtBeforePublish)
	}
	if g := m.Generation(); g != 1 {
		t.Fatalf("Generation() after Build = %d, want 1", g)
	}

	m.AddNode("s", node.NewLeafString("v2"))
	m.Build()
	if genAtBeforePublish != 1 {
		t.Errorf("before-publish listener on second Build saw generation %d, want 1", genAtBeforePublish)
	}
}

func TestBuildWithNoSourcesYieldsEmptyTree(t *testing.T) {
	m := New(nil)
	out := m.Build()
	tree, ok := out.Value()
	if !ok {
		t.Fatalf("Build with no sources failed: %v", out.Errors())
	}
	if tree.Kind() != node.KindMap || tree.Size() != 0 {
		t.Errorf("expected an empty map, got kind=%v size=%d", tree.Kind(), tree.Size())
	}
}
