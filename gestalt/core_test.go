package gestalt

import (
	"testing"

	"github.com/ikalinin1/gestalt/decode"
	"github.com/ikalinin1/gestalt/loader"
	"github.com/ikalinin1/gestalt/source"
)

func newTestCore(t *testing.T, values map[string]string) *Core {
	t.Helper()
	opts := NewOptions().
		WithSource(source.MapSource{SourceName: "defaults", Values: values}).
		WithLoader(loader.NewKeyValueLoader(nil)).
		WithDecoder(decode.StringDecoder{}).
		WithDecoder(decode.IntDecoder{}).
		WithDecoder(decode.BoolDecoder{}).
		WithLogger(DiscardLogger)
	c := New(opts)
	if errs := c.LoadConfigs(); len(errs) != 0 {
		t.Fatalf("LoadConfigs: %v", errs)
	}
	return c
}

func TestGetConfigDecodesString(t *testing.T) {
	c := newTestCore(t, map[string]string{"db.host": "localhost"})
	v, err := GetConfig[string](c, "db.host")
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if v != "localhost" {
		t.Errorf("GetConfig = %q, want localhost", v)
	}
}

func TestGetConfigMissingPathIsFatal(t *testing.T) {
	c := newTestCore(t, map[string]string{"db.host": "localhost"})
	if _, err := GetConfig[string](c, "db.missing"); err == nil {
		t.Fatalf("expected an error for a missing path")
	}
}

func TestGetConfigOptionalToleratesAbsence(t *testing.T) {
	c := newTestCore(t, map[string]string{"db.host": "localhost"})
	_, ok, err := GetConfigOptional[string](c, "db.missing")
	if err != nil {
		t.Fatalf("GetConfigOptional: %v", err)
	}
	if ok {
		t.Errorf("expected ok=false for a missing path")
	}
}

func TestGetConfigDefaultFallsBackOnMissing(t *testing.T) {
	c := newTestCore(t, map[string]string{"db.host": "localhost"})
	v, err := GetConfigDefault(c, "db.port", 5432)
	if err != nil {
		t.Fatalf("GetConfigDefault: %v", err)
	}
	if v != 5432 {
		t.Errorf("GetConfigDefault = %d, want 5432", v)
	}
}

func TestGetConfigDecodesInt(t *testing.T) {
	c := newTestCore(t, map[string]string{"db.port": "5432"})
	v, err := GetConfig[int](c, "db.port")
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if v != 5432 {
		t.Errorf("GetConfig = %d, want 5432", v)
	}
}

func TestReloadPublishesNewGeneration(t *testing.T) {
	c := newTestCore(t, map[string]string{"db.host": "localhost"})
	if c.Generation() != 1 {
		t.Fatalf("Generation() = %d, want 1", c.Generation())
	}

	var seen []uint64
	c.OnReload(func(gen uint64) { seen = append(seen, gen) })

	c.opts.Sources = []source.Source{source.MapSource{SourceName: "defaults", Values: map[string]string{"db.host": "remotehost"}}}
	if errs := c.LoadConfigs(); len(errs) != 0 {
		t.Fatalf("LoadConfigs: %v", errs)
	}
	if c.Generation() != 2 {
		t.Fatalf("Generation() = %d, want 2", c.Generation())
	}
	if len(seen) != 1 || seen[0] != 2 {
		t.Fatalf("reload listener saw %v, want [2]", seen)
	}

	v, err := GetConfig[string](c, "db.host")
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if v != "remotehost" {
		t.Errorf("GetConfig after reload = %q, want remotehost", v)
	}
}
