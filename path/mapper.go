package path

import (
	"strings"
	"unicode"

	"github.com/ikalinin1/gestalt/result"
)

// Mapper transforms a path string before it is tokenized (or tokenizes it
// directly). Registries try mappers in priority order until one returns a
// result, per spec.md §4.1 ("path mappers are pluggable").
type Mapper interface {
	// Name identifies the mapper for duplicate-registration diagnostics.
	Name() string
	// Priority controls ordering: higher values are tried first.
	Priority() int
	// Map lexes sentence (after any mapper-specific rewrite) in the
	// context named by path, for error messages.
	Map(path, sentence string) result.R[[]Token]
}

// StandardMapper lexes the path exactly as given: the identity mapper.
type StandardMapper struct{}

func (StandardMapper) Name() string  { return "standard" }
func (StandardMapper) Priority() int { return 0 }
func (StandardMapper) Map(ctx, sentence string) result.R[[]Token] {
	return Tokenize(sentence, ctx)
}

// SnakeCaseMapper rewrites each camelCase segment to snake_case before
// lexing, so a path written as "dbPort" also resolves a tree keyed by
// "db_port". Priority is lower than StandardMapper's so the registry tries
// the as-given spelling first.
type SnakeCaseMapper struct{}

func (SnakeCaseMapper) Name() string  { return "snake_case" }
func (SnakeCaseMapper) Priority() int { return -10 }
func (SnakeCaseMapper) Map(ctx, sentence string) result.R[[]Token] {
	return Tokenize(toSnakeCase(sentence), ctx)
}

// toSnakeCase rewrites camelCase runs to snake_case, leaving path
// punctuation ('.', '[', ']') untouched.
func toSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && isIdentRune(runes[i-1]) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isIdentRune(r rune) bool {
	return r != '.' && r != '[' && r != ']'
}

// Registry tries a priority-ordered list of Mappers until one produces a
// result; on total failure it concatenates every mapper's errors, per
// spec.md §4.1.
type Registry struct {
	mappers []Mapper
}

// NewRegistry builds a Registry with the standard and snake_case mappers
// pre-registered, matching spec.md §4.1's description of the two built-ins.
func NewRegistry(extra ...Mapper) *Registry {
	r := &Registry{mappers: []Mapper{StandardMapper{}, SnakeCaseMapper{}}}
	r.mappers = append(r.mappers, extra...)
	sortMappersByPriorityDesc(r.mappers)
	return r
}

func sortMappersByPriorityDesc(m []Mapper) {
	for i := 1; i < len(m); i++ {
		for j := i; j > 0 && m[j-1].Priority() < m[j].Priority(); j-- {
			m[j-1], m[j] = m[j], m[j-1]
		}
	}
}

// Tokenize tries each mapper in priority order, returning the first result
// that carries a value. If none does, every mapper's errors are
// concatenated into a single failure.
func (r *Registry) Tokenize(ctx, sentence string) result.R[[]Token] {
	var allErrs []result.ValidationError
	for _, m := range r.mappers {
		res := m.Map(ctx, sentence)
		if res.HasResult() {
			return res
		}
		allErrs = append(allErrs, res.Errors()...)
	}
	return result.Invalid[[]Token](allErrs...)
}
