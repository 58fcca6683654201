package source

import (
	"os"
	"strings"
)

// EnvSource exposes the process environment as a list-shaped source.
// Variables are filtered by Prefix (if non-empty), the prefix stripped,
// then lowercased and underscores turned into dots so APP_DB_PORT becomes
// db.port under prefix "APP_".
type EnvSource struct {
	Prefix string
	// Environ is overridable for tests; nil uses os.Environ.
	Environ func() []string
}

func (e EnvSource) environ() []string {
	if e.Environ != nil {
		return e.Environ()
	}
	return os.Environ()
}

func (e EnvSource) ID() string     { return "env:" + e.Prefix }
func (e EnvSource) Name() string   { return "environment" }
func (EnvSource) Format() string   { return "keyvalue" }
func (EnvSource) HasStream() bool  { return false }
func (EnvSource) LoadStream() ([]byte, error) { return nil, nil }
func (EnvSource) HasList() bool    { return true }

func (e EnvSource) LoadList() ([]KeyValue, error) {
	var out []KeyValue
	for _, entry := range e.environ() {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if e.Prefix != "" {
			if !strings.HasPrefix(k, e.Prefix) {
				continue
			}
			k = strings.TrimPrefix(k, e.Prefix)
		}
		path := strings.ReplaceAll(strings.ToLower(k), "_", ".")
		out = append(out, KeyValue{Key: path, Value: v})
	}
	return out, nil
}
