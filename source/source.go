// Package source implements the Source contract of spec.md §6: a named,
// stably-identified provider of either a byte stream or a key/value list,
// in a self-declared format that selects the loader.
package source

// Source is one configuration input. Exactly one of HasStream/HasList
// should be true; Format selects which loader.Loader claims it.
type Source interface {
	// ID is a stable identifier used by manager.Manager to dedupe reloads
	// of the same source (spec.md §9 open question (a)).
	ID() string
	Name() string
	Format() string

	HasStream() bool
	LoadStream() ([]byte, error)

	HasList() bool
	LoadList() ([]KeyValue, error)
}

// KeyValue is one entry of a list-shaped source's contribution.
type KeyValue struct {
	Key   string
	Value string
}
