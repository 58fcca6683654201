package decode

import (
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/openconfig/gnmi/errdiff"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/path"
	"github.com/ikalinin1/gestalt/result"
)

func newRegistry(decoders ...Decoder) *Registry {
	r := NewRegistry(nil, nil)
	r.SetDecoders(decoders...)
	return r
}

func TestCharTooLongEmitsWarnKeepsFirst(t *testing.T) {
	// spec.md §8 scenario S1.
	reg := newRegistry(CharDecoder{})
	leaf := node.NewLeafString("aaa")
	out := reg.DecodeNode(nil, leaf, runeType)
	v, ok := out.Value()
	if !ok || v.(Rune) != 'a' {
		t.Fatalf("Decode(char, \"aaa\") = %v, %v, want 'a', true", v, ok)
	}
	if len(out.Errors()) != 1 || out.Errors()[0].Level != result.WARN {
		t.Errorf("expected exactly one WARN error, got %v", out.Errors())
	}
	if diff := errdiff.Substring(out.Errors()[0], "received the wrong size"); diff != "" {
		t.Error(diff)
	}
}

func TestCharEmptyIsError(t *testing.T) {
	// spec.md §8 scenario S2.
	reg := newRegistry(CharDecoder{})
	leaf := node.NewLeafString("")
	out := reg.DecodeNode(nil, leaf, runeType)
	if out.HasResult() {
		t.Fatalf("Decode(char, \"\") unexpectedly produced a value")
	}
	if diff := errdiff.Substring(out.Errors()[0], "received the wrong size"); diff != "" {
		t.Error(diff)
	}
}

func TestCommaArrayOfInt(t *testing.T) {
	// spec.md §8 scenario S3.
	reg := newRegistry(IntDecoder{}, ArrayDecoder{})
	leaf := node.NewLeafString("1, 2 ,3")
	out := reg.DecodeNode(nil, leaf, reflect.TypeOf([]int{}))
	v, ok := out.Value()
	if !ok {
		t.Fatalf("Decode(array<int>) failed: %v", out.Errors())
	}
	got := v.([]int)
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if len(out.Errors()) != 0 {
		t.Errorf("expected no errors, got %v", out.Errors())
	}
}

func TestDurationFromInteger(t *testing.T) {
	// spec.md §8 scenario S8.
	reg := newRegistry(DurationDecoder{})
	leaf := node.NewLeafString("500")
	out := reg.DecodeNode(nil, leaf, reflect.TypeOf(time.Duration(0)))
	v, ok := out.Value()
	if !ok {
		t.Fatalf("Decode(duration, \"500\") failed: %v", out.Errors())
	}
	if v.(time.Duration) != 500*time.Millisecond {
		t.Errorf("got %v, want 500ms", v)
	}
}

func TestDurationFromISO8601(t *testing.T) {
	reg := newRegistry(DurationDecoder{})
	leaf := node.NewLeafString("PT1H30M")
	out := reg.DecodeNode(nil, leaf, reflect.TypeOf(time.Duration(0)))
	v, ok := out.Value()
	if !ok {
		t.Fatalf("Decode(duration, PT1H30M) failed: %v", out.Errors())
	}
	if v.(time.Duration) != 90*time.Minute {
		t.Errorf("got %v, want 90m", v)
	}
}

func TestURIDecoderParsesValidURI(t *testing.T) {
	reg := newRegistry(URIDecoder{})
	leaf := node.NewLeafString("https://example.com/path?q=1")
	out := reg.DecodeNode(nil, leaf, reflect.TypeOf(&url.URL{}))
	v, ok := out.Value()
	if !ok {
		t.Fatalf("Decode(uri, ...) failed: %v", out.Errors())
	}
	u := v.(*url.URL)
	if u.Host != "example.com" || u.Scheme != "https" {
		t.Errorf("got %v, want host example.com scheme https", u)
	}
}

func TestURIDecoderRejectsInvalidURI(t *testing.T) {
	reg := newRegistry(URIDecoder{})
	leaf := node.NewLeafString("http://foo.com/%zz")
	out := reg.DecodeNode(nil, leaf, reflect.TypeOf(&url.URL{}))
	if out.HasResult() {
		t.Fatalf("expected no result for an invalid URI, got %v", out)
	}
	if diff := errdiff.Substring(out.Errors()[0], "not a valid URI"); diff != "" {
		t.Error(diff)
	}
}

func TestNoDecoderForType(t *testing.T) {
	reg := newRegistry(IntDecoder{})
	leaf := node.NewLeafString("x")
	out := reg.DecodeNode(nil, leaf, reflect.TypeOf(""))
	if out.HasResult() {
		t.Fatalf("expected no decoder match to fail")
	}
	if diff := errdiff.Substring(out.Errors()[0], "no decoder registered"); diff != "" {
		t.Error(diff)
	}
}

func TestObjectDecoderMissingFieldPolicy(t *testing.T) {
	type Sub struct {
		Host string
		Port int
	}
	reg := newRegistry(StringDecoder{}, IntDecoder{}, ObjectDecoder{Policy: ObjectPolicy{TreatMissingValuesAsErrors: true}})
	tree := node.NewMap(map[string]*node.Node{
		"host": node.NewLeafString("localhost"),
	})
	out := reg.DecodeNode(nil, tree, reflect.TypeOf(Sub{}))
	if out.HasResult() {
		t.Fatalf("expected missing Port field to fail under TreatMissingValuesAsErrors")
	}
	found := false
	for _, e := range out.Errors() {
		if diff := errdiff.Substring(e, "missing field"); diff == "" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a missing-field error, got %v", out.Errors())
	}
}

func TestGetNextNodeNavigatesOneStep(t *testing.T) {
	tree := node.NewMap(map[string]*node.Node{
		"db": node.NewMap(map[string]*node.Node{"port": node.NewLeafString("5432")}),
	})
	reg := NewRegistry(tree, path.NewRegistry())
	out := reg.GetNextNode(nil, "db", tree)
	n, ok := out.Value()
	if !ok {
		t.Fatalf("GetNextNode(db) failed: %v", out.Errors())
	}
	if n.Kind() != node.KindMap {
		t.Errorf("GetNextNode(db) kind = %v, want Map", n.Kind())
	}
}
