package decode

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/kylelemons/godebug/pretty"

	"github.com/ikalinin1/gestalt/logging"
	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/path"
	"github.com/ikalinin1/gestalt/result"
)

// Registry is the decoder registry (C6): state is the decoder list, the
// path-mapper registry, and the node tree being decoded against.
type Registry struct {
	decoders []Decoder
	mappers  *path.Registry
	root     *node.Node
	logger   logging.Logger

	loggedAmbiguous map[string]bool
}

// NewRegistry builds a Registry bound to root with mappers used to tokenize
// path segments during GetNextNode. Built-in decoders are not pre-
// registered; callers add what they need via SetDecoders (mirroring the
// teacher's explicit, non-scanning registration style, spec.md §9 Design
// Notes "Service discovery"). Diagnostic output goes to logging.Stderr by
// default; call SetLogger to redirect it.
func NewRegistry(root *node.Node, mappers *path.Registry) *Registry {
	if mappers == nil {
		mappers = path.NewRegistry()
	}
	return &Registry{mappers: mappers, root: root, logger: logging.Stderr, loggedAmbiguous: map[string]bool{}}
}

// SetTree rebinds the tree the registry navigates, used by the core
// orchestrator (C8) after every generation swap.
func (r *Registry) SetTree(root *node.Node) { r.root = root }

// SetLogger redirects the registry's diagnostic output.
func (r *Registry) SetLogger(l logging.Logger) {
	if l == nil {
		l = logging.Discard
	}
	r.logger = l
}

// SetDecoders replaces the decoder list, deduping by (name, priority) and
// logging duplicates at WARN (spec.md §4.6 "set_decoders dedupes").
func (r *Registry) SetDecoders(decoders ...Decoder) {
	seen := map[string]bool{}
	out := make([]Decoder, 0, len(decoders))
	for _, d := range decoders {
		key := fmt.Sprintf("%s/%d", d.Name(), d.Priority())
		if seen[key] {
			r.logger.Printf("gestalt: duplicate decoder %s at priority %d ignored", d.Name(), d.Priority())
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	r.decoders = out
}

// GetDecoderFor returns the decoders matching typ, sorted by descending
// priority; ties keep first-added order (spec.md §4.6).
func (r *Registry) GetDecoderFor(typ reflect.Type) []Decoder {
	var matched []Decoder
	for _, d := range r.decoders {
		if d.Matches(typ) {
			matched = append(matched, d)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Priority() > matched[j].Priority()
	})
	return matched
}

// DecodeNode picks the highest-priority decoder matching typ and invokes
// it; on multiple matches at the same priority, logs once (per type) and
// picks the first. No match is ERROR NoDecoderFor.
func (r *Registry) DecodeNode(p []path.Token, n *node.Node, typ reflect.Type) result.R[interface{}] {
	candidates := r.GetDecoderFor(typ)
	if len(candidates) == 0 {
		return result.Invalid[interface{}](result.NewError(result.NoDecoderFor, result.ERROR,
			"no decoder registered for type %s", typ))
	}
	if len(candidates) > 1 && candidates[0].Priority() == candidates[1].Priority() {
		typeKey := typ.String()
		if !r.loggedAmbiguous[typeKey] {
			r.loggedAmbiguous[typeKey] = true
			names := make([]string, len(candidates))
			for i, c := range candidates {
				names[i] = c.Name()
			}
			r.logger.Printf("gestalt: ambiguous decoder match for %s, picking first: %s", typeKey, pretty.Sprint(names))
		}
	}
	return candidates[0].Decode(p, n, typ, r)
}

// GetNextNode tokenizes segment via the path-mapper registry and navigates
// one step from n (spec.md §4.6 get_next_node).
func (r *Registry) GetNextNode(p []path.Token, segment string, n *node.Node) result.R[*node.Node] {
	toks := r.mappers.Tokenize(segment, segment)
	ts, ok := toks.Value()
	if !ok {
		return result.Invalid[*node.Node](toks.Errors()...)
	}
	return node.Navigate(n, ts)
}

// Root returns the tree this registry currently decodes against.
func (r *Registry) Root() *node.Node { return r.root }

// Mappers returns the path-mapper registry used for segment tokenization.
func (r *Registry) Mappers() *path.Registry { return r.mappers }
