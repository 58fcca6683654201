package postprocess

import (
	"testing"

	"github.com/openconfig/gnmi/errdiff"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/path"
	"github.com/ikalinin1/gestalt/result"
)

func TestSubstitutionDefaultOnMissingEnv(t *testing.T) {
	// spec.md §8 scenario S4.
	sp := NewSubstitutionProcessor(EnvTransform{})
	tree := node.NewMap(map[string]*node.Node{
		"home": node.NewLeafString("${env:GESTALT_TEST_UNSET_VAR:=/tmp}"),
	})
	c := NewChain(sp)
	out := c.Run(tree)
	result, ok := out.Value()
	if !ok {
		t.Fatalf("Run failed: %v", out.Errors())
	}
	home, _ := result.GetKey("home")
	v, _ := home.Value()
	if v != "/tmp" {
		t.Errorf("home = %q, want /tmp", v)
	}
	found := false
	for _, e := range out.Errors() {
		if diff := errdiff.Substring(e, "missing key"); diff == "" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a missing-key info error, got %v", out.Errors())
	}
}

func TestSubstitutionNestedChain(t *testing.T) {
	// spec.md §8 scenario S5: a -> b -> c -> "x".
	sp := NewSubstitutionProcessor()
	tree := node.NewMap(map[string]*node.Node{
		"a": node.NewLeafString("${b}"),
		"b": node.NewLeafString("${c}"),
		"c": node.NewLeafString("x"),
	})
	c := NewChain(sp)
	out := c.Run(tree)
	result, ok := out.Value()
	if !ok {
		t.Fatalf("Run failed: %v", out.Errors())
	}
	a, _ := result.GetKey("a")
	v, _ := a.Value()
	if v != "x" {
		t.Errorf("a = %q, want x", v)
	}
}

func TestSubstitutionCycleDetected(t *testing.T) {
	// spec.md §8 scenario S6: a -> b -> a.
	sp := NewSubstitutionProcessor()
	tree := node.NewMap(map[string]*node.Node{
		"a": node.NewLeafString("${b}"),
		"b": node.NewLeafString("${a}"),
	})
	c := NewChain(sp)
	out := c.Run(tree)
	if len(out.Errors()) == 0 {
		t.Fatalf("expected a cycle error, got none")
	}
	found := false
	for _, e := range out.Errors() {
		if diff := errdiff.Substring(e, "cycle"); diff == "" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a substitution cycle error, got %v", out.Errors())
	}
}

func TestSubstitutionNodeTransformDefaultsToTreeLookup(t *testing.T) {
	sp := NewSubstitutionProcessor()
	tree := node.NewMap(map[string]*node.Node{
		"host": node.NewLeafString("db.example.com"),
		"url":  node.NewLeafString("postgres://${host}/app"),
	})
	c := NewChain(sp)
	out := c.Run(tree)
	result, ok := out.Value()
	if !ok {
		t.Fatalf("Run failed: %v", out.Errors())
	}
	url, _ := result.GetKey("url")
	v, _ := url.Value()
	if v != "postgres://db.example.com/app" {
		t.Errorf("url = %q, want postgres://db.example.com/app", v)
	}
}

func TestTemporarySecretAccessCounting(t *testing.T) {
	// spec.md §8 scenario S9: N=2 -> v, v, empty.
	rule := SecretRule{
		Matches:  func(p string) bool { return p == "password" },
		MaxReads: 2,
	}
	sp := NewSecretProcessor(rule)
	tree := node.NewMap(map[string]*node.Node{
		"password": node.NewLeafString("hunter2"),
	})
	c := NewChain(sp)
	out := c.Run(tree)
	result, ok := out.Value()
	if !ok {
		t.Fatalf("Run failed: %v", out.Errors())
	}
	pw, _ := result.GetKey("password")
	if !pw.IsSecret() {
		t.Fatalf("password leaf was not wrapped as secret")
	}
	v1, ok1 := pw.Value()
	v2, ok2 := pw.Value()
	v3, ok3 := pw.Value()
	if !ok1 || v1 != "hunter2" {
		t.Errorf("read 1 = %q, %v, want hunter2, true", v1, ok1)
	}
	if !ok2 || v2 != "hunter2" {
		t.Errorf("read 2 = %q, %v, want hunter2, true", v2, ok2)
	}
	if ok3 || v3 != "" {
		t.Errorf("read 3 = %q, %v, want \"\", false", v3, ok3)
	}
}

func TestChainOrdersByDescendingPriority(t *testing.T) {
	var order []string
	rec := func(name string, pr int) *recordingProcessor {
		return &recordingProcessor{name: name, priority: pr, log: &order}
	}
	c := NewChain(rec("low", 1), rec("high", 100), rec("mid", 50))
	leaf := node.NewLeafString("v")
	c.Run(leaf)
	want := []string{"high", "mid", "low"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

type recordingProcessor struct {
	name     string
	priority int
	log      *[]string
}

func (r *recordingProcessor) Name() string  { return r.name }
func (r *recordingProcessor) Priority() int { return r.priority }
func (r *recordingProcessor) Process(p []path.Token, n *node.Node) result.R[*node.Node] {
	*r.log = append(*r.log, r.name)
	return result.Valid(n)
}
