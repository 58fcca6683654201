package postprocess

import (
	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/path"
	"github.com/ikalinin1/gestalt/result"
)

// SecretRule decides whether a leaf at a given rendered path should be
// wrapped as an access-counted secret, and if so, how many reads it
// tolerates before it empties (spec.md §4.5 "TemporarySecret processor").
type SecretRule struct {
	// Matches is called with the dotted, rendered path of the candidate
	// leaf (path.Render). A nil Matches matches every leaf path.
	Matches func(renderedPath string) bool
	// MaxReads is the number of Value() reads that still return the
	// plain-text before it is permanently dropped. Zero defaults to 1.
	MaxReads int
}

func (r SecretRule) maxReads() int {
	if r.MaxReads <= 0 {
		return 1
	}
	return r.MaxReads
}

// SecretProcessor is the TemporarySecret post-processor: leaves whose
// rendered path matches any configured SecretRule are replaced with an
// access-counted leaf (node.NewSecretLeaf) that yields its value for up to
// Rule.MaxReads reads, then empty forever, dropping its inner reference.
//
// Grounded on the teacher's (openconfig/goyang) pattern of configuration-
// driven leaf rewriting in pkg/yang/deviate.go, where a small set of rules
// is matched against a node to decide whether to replace its value.
type SecretProcessor struct {
	rules    []SecretRule
	priority int
}

// NewSecretProcessor builds the processor from rules, tried in order; the
// first matching rule wins. Runs after substitution by default (lower
// priority number) so a substituted value can still be marked secret.
func NewSecretProcessor(rules ...SecretRule) *SecretProcessor {
	return &SecretProcessor{rules: rules, priority: 50}
}

func (sp *SecretProcessor) Name() string  { return "temporary-secret" }
func (sp *SecretProcessor) Priority() int { return sp.priority }

// WithPriority overrides the chain-ordering priority (default 50).
func (sp *SecretProcessor) WithPriority(p int) *SecretProcessor {
	sp.priority = p
	return sp
}

func (sp *SecretProcessor) Process(p []path.Token, n *node.Node) result.R[*node.Node] {
	if n == nil || n.Kind() != node.KindLeaf || n.IsSecret() {
		return result.Valid(n)
	}
	v, ok := n.Value()
	if !ok {
		return result.Valid(n)
	}
	rendered := path.Render(p)
	for _, rule := range sp.rules {
		if rule.Matches != nil && !rule.Matches(rendered) {
			continue
		}
		wrapped := node.NewSecretLeaf(v, rule.maxReads(), n.Metadata())
		return result.Valid(wrapped)
	}
	return result.Valid(n)
}
