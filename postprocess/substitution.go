package postprocess

import (
	"regexp"
	"strings"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/path"
	"github.com/ikalinin1/gestalt/result"
)

const defaultMaxDepth = 5

// innerGrammar matches the content between a substitution's opening and
// closing tokens: "(?:<transform>:)?<key>(?::=<default>)?" per spec.md
// §4.5. Group 1 is the transform name, group 2 the key, group 3 the whole
// ":=default" clause (so its presence, not its content, signals that a
// default was supplied — an empty default is still a supplied one), group
// 4 the default value itself.
var innerGrammar = regexp.MustCompile(`^(?:([A-Za-z_][A-Za-z0-9_]*):)?([^:]+?)(:=(.*))?$`)

// SubstitutionProcessor implements the substitution engine of spec.md
// §4.5: it rewrites leaves whose value contains the opening token up to
// the closing token, resolving leftmost-innermost first, with bounded
// recursion depth and (key,transform) cycle detection.
type SubstitutionProcessor struct {
	open, close string
	grammar     *regexp.Regexp
	maxDepth    int
	transforms  map[string]Transform
	priority    int
}

// NewSubstitutionProcessor builds the engine with the given transforms
// registered by name (Name()); "node" is always available even if not
// passed explicitly, since it is the spec-mandated default transform.
func NewSubstitutionProcessor(transforms ...Transform) *SubstitutionProcessor {
	sp := &SubstitutionProcessor{
		open:     "${",
		close:    "}",
		grammar:  innerGrammar,
		maxDepth: defaultMaxDepth,
		transforms: map[string]Transform{
			"node": NewNodeTransform(nil),
		},
		priority: 100,
	}
	for _, t := range transforms {
		sp.transforms[t.Name()] = t
	}
	return sp
}

func (sp *SubstitutionProcessor) Name() string  { return "substitution" }
func (sp *SubstitutionProcessor) Priority() int { return sp.priority }

// WithPriority overrides the chain-ordering priority (default 100, high
// enough to run ahead of most other processors).
func (sp *SubstitutionProcessor) WithPriority(p int) *SubstitutionProcessor {
	sp.priority = p
	return sp
}

// WithTokens overrides the opening/closing substitution delimiters (spec.md
// §6 substitutionOpeningToken/ClosingToken).
func (sp *SubstitutionProcessor) WithTokens(open, close string) *SubstitutionProcessor {
	sp.open, sp.close = open, close
	return sp
}

// WithMaxDepth overrides the recursion bound (spec.md §6 substitutionMaxNestedDepth).
func (sp *SubstitutionProcessor) WithMaxDepth(d int) *SubstitutionProcessor {
	sp.maxDepth = d
	return sp
}

// WithGrammar overrides the inner-expression regex (spec.md §6
// substitutionRegex). The replacement must define the same four capture
// groups as innerGrammar.
func (sp *SubstitutionProcessor) WithGrammar(re *regexp.Regexp) *SubstitutionProcessor {
	sp.grammar = re
	return sp
}

// SetTree rebinds the "node" transform, if present, to the tree currently
// being built — Chain.Run calls this via the TreeAware interface.
func (sp *SubstitutionProcessor) SetTree(root *node.Node) {
	if nt, ok := sp.transforms["node"].(*NodeTransform); ok {
		nt.SetTree(root)
	}
}

func (sp *SubstitutionProcessor) Process(p []path.Token, n *node.Node) result.R[*node.Node] {
	if n == nil || n.Kind() != node.KindLeaf {
		return result.Valid(n)
	}
	raw, ok := n.Value()
	if !ok || !strings.Contains(raw, sp.open) {
		return result.Valid(n)
	}
	selfKey := "node:" + path.Render(p)
	resolved, errs := sp.resolveValue(raw, 0, map[string]bool{selfKey: true})
	out := node.NewLeaf(&resolved, n.Metadata())
	return result.Of(&out, errs...)
}

// findInnermost locates the leftmost-innermost substitution expression in
// s: the first closing token, paired with the nearest preceding opening
// token. Because inner expressions always close before their enclosing
// expression does, this pairing is always the innermost one, per spec.md
// §4.5 item 1.
func (sp *SubstitutionProcessor) findInnermost(s string) (start, end int, ok bool) {
	closeIdx := strings.Index(s, sp.close)
	if closeIdx < 0 {
		return 0, 0, false
	}
	openIdx := strings.LastIndex(s[:closeIdx], sp.open)
	if openIdx < 0 {
		return 0, 0, false
	}
	return openIdx, closeIdx + len(sp.close), true
}

// resolveValue fully resolves raw, recursively expanding any substitution
// whose looked-up value itself contains further substitutions. depth counts
// nested expansions across the whole call tree (spec.md §4.5 item 4);
// visited tracks the (transform,key) pairs on the current expansion path
// for cycle detection (item 5).
func (sp *SubstitutionProcessor) resolveValue(raw string, depth int, visited map[string]bool) (string, []result.ValidationError) {
	var errs []result.ValidationError
	cur := raw
	for {
		start, end, ok := sp.findInnermost(cur)
		if !ok {
			break
		}
		if depth+1 > sp.maxDepth {
			errs = append(errs, result.NewError(result.SubstitutionRecursion, result.ERROR,
				"exceeded maximum substitution depth %d", sp.maxDepth))
			return cur, errs
		}
		inner := cur[start+len(sp.open) : end-len(sp.close)]
		m := sp.grammar.FindStringSubmatch(inner)
		if m == nil {
			errs = append(errs, result.NewError(result.SubstitutionMissingKey, result.ERROR,
				"malformed substitution expression %q", inner))
			return cur, errs
		}
		transformName, key, hasDefault, def := m[1], m[2], m[3] != "", m[4]
		if transformName == "" {
			transformName = "node"
		}
		pairKey := transformName + ":" + key
		if visited[pairKey] {
			errs = append(errs, result.NewError(result.SubstitutionCycle, result.ERROR,
				"substitution cycle detected resolving %s", pairKey))
			return cur, errs
		}

		tr, known := sp.transforms[transformName]
		var val string
		switch {
		case !known:
			errs = append(errs, result.NewError(result.SubstitutionMissingKey, result.MISSING_VALUE,
				"unknown substitution transform %q", transformName))
			return cur, errs
		default:
			found, ok := tr.Get(key)
			if !ok {
				if !hasDefault {
					errs = append(errs, result.NewError(result.SubstitutionMissingKey, result.MISSING_VALUE,
						"missing key %q for transform %q", key, transformName))
					return cur, errs
				}
				errs = append(errs, result.NewError(result.SubstitutionMissingKey, result.MISSING_OPTIONAL_VALUE,
					"missing key %q for transform %q, using default", key, transformName))
				val = def
			} else {
				visited[pairKey] = true
				resolvedFound, subErrs := sp.resolveValue(found, depth+1, visited)
				delete(visited, pairKey)
				errs = append(errs, subErrs...)
				val = resolvedFound
			}
		}
		cur = cur[:start] + val + cur[end:]
	}
	return cur, errs
}
