package node

import "sync"

// secretAccessor backs an access-counted leaf: it returns the wrapped value
// for up to maxReads reads, then permanently reports absent and releases
// its reference to the plain-text so it can be reclaimed (spec.md §4.5
// "TemporarySecret processor", scenario S9).
type secretAccessor struct {
	mu        sync.Mutex
	value     *string
	remaining int
}

func (s *secretAccessor) read() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remaining <= 0 || s.value == nil {
		return "", false
	}
	v := *s.value
	s.remaining--
	if s.remaining <= 0 {
		s.value = nil
	}
	return v, true
}

// NewSecretLeaf builds a leaf whose Value() is access-counted: it yields
// value for up to maxReads calls, then empty thereafter, dropping its
// internal reference to value once exhausted. The leaf always carries the
// non-rolling "isSecret" metadata key so Rollup never propagates it.
func NewSecretLeaf(value string, maxReads int, metadata map[string][]MetaValue) *Node {
	md := map[string][]MetaValue{}
	for k, v := range metadata {
		md[k] = append([]MetaValue(nil), v...)
	}
	md["isSecret"] = append(md["isSecret"], MetaValue{Value: true})
	v := value
	return &Node{
		kind:         KindLeaf,
		leafMetadata: md,
		secret:       &secretAccessor{value: &v, remaining: maxReads},
	}
}

// IsSecret reports whether n is a TemporarySecret-wrapped leaf.
func (n *Node) IsSecret() bool {
	return n != nil && n.kind == KindLeaf && n.secret != nil
}
