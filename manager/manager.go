// Package manager implements the node manager (C4): it owns the current
// generation of the merged configuration tree, accumulates per-source
// fragments, swaps in a freshly built generation atomically, and notifies
// reload listeners.
//
// The accumulate-then-process-as-a-distinct-pass shape is grounded on the
// teacher's (openconfig/goyang) pkg/yang/modules.go Modules type: Read/Parse
// accumulate module fragments by name, and a later Process pass builds the
// Entry tree from what has accumulated. Manager does the same with node
// fragments instead of YANG modules, and the "swap a single owning
// reference under a lock" pattern is grounded on the same file's
// byPrefix/byNS caches, invalidated and rebuilt together rather than
// mutated piecemeal.
package manager

import (
	"sync"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/path"
	"github.com/ikalinin1/gestalt/postprocess"
	"github.com/ikalinin1/gestalt/result"
)

// ReloadListener is notified after every successful generation build
// (spec.md §4.4 "Emits a core-reload event after every successful
// generation build").
type ReloadListener func(generation uint64)

// BeforePublishListener runs after a generation has been built but before
// it is swapped in as the currently-published tree (spec.md §5 "reload
// clears the cache before publishing the new generation") — the seam
// gestalt.Cache hooks to invalidate its memo before readers could ever see
// a tree/cache mismatch.
type BeforePublishListener func()

type sourceFragment struct {
	sourceID string
	fragment *node.Node
}

// Manager owns the frozen, currently-published tree, plus the raw
// per-source fragments used to rebuild it. Reads acquire a shared lock,
// copy the tree reference, and release immediately (spec.md §5 "Readers vs
// writers"); ReloadNode/AddNode hold the exclusive lock while they update
// the fragment list, and Build merges and post-processes off-line, taking
// the exclusive lock only to swap in the new tree.
type Manager struct {
	mu            sync.RWMutex
	tree          *node.Node
	generation    uint64
	fragments     []sourceFragment
	chain         *postprocess.Chain
	listeners     []ReloadListener
	beforePublish []BeforePublishListener
}

// New builds a Manager whose generations are post-processed by chain
// (nil is allowed: no post-processing).
func New(chain *postprocess.Chain) *Manager {
	return &Manager{tree: node.NewMap(nil), chain: chain}
}

// OnReload registers a listener invoked after every successful Build, once
// the new generation is already the one Navigate/Tree return.
func (m *Manager) OnReload(l ReloadListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// OnBeforePublish registers a listener invoked after a generation finishes
// building but before it replaces the currently-published tree.
func (m *Manager) OnBeforePublish(l BeforePublishListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beforePublish = append(m.beforePublish, l)
}

// AddNode appends a fragment under sourceID. If sourceID already has a
// fragment, it is replaced in place rather than appended again — per
// spec.md §9 open question (a), chosen so a source's position in the
// merge order never shifts across a reload of just that source, and so
// ReloadNode(id) remains unambiguous about which contribution it updates.
func (m *Manager) AddNode(sourceID string, fragment *node.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, f := range m.fragments {
		if f.sourceID == sourceID {
			m.fragments[i].fragment = fragment
			return
		}
	}
	m.fragments = append(m.fragments, sourceFragment{sourceID: sourceID, fragment: fragment})
}

// ReloadNode is AddNode under the name the spec uses for an update to an
// already-added source.
func (m *Manager) ReloadNode(sourceID string, fragment *node.Node) {
	m.AddNode(sourceID, fragment)
}

// Build merges all fragments in source order (later wins, spec.md §8 S7),
// runs the post-processor chain over the merged tree, and publishes the new
// generation (an empty map when nothing was merged). Before-publish
// listeners run first, while m.tree/m.generation still reflect the OLD
// generation, so a cache clearing itself there can never observe a
// tree/cache mismatch; the tree/generation swap happens next atomically
// under the lock; reload listeners then run last, once Navigate/Tree
// already return the new generation (spec.md §5 "reload clears the cache
// before publishing the new generation"). It returns the merged-and-
// processed tree along with any errors accumulated along the way; errors do
// not prevent publication.
func (m *Manager) Build() result.R[*node.Node] {
	m.mu.RLock()
	fragments := append([]sourceFragment(nil), m.fragments...)
	m.mu.RUnlock()

	var merged *node.Node
	var errs []result.ValidationError
	for _, f := range fragments {
		mr := node.Merge(merged, f.fragment)
		errs = append(errs, mr.Errors()...)
		if v, ok := mr.Value(); ok {
			merged = v
		}
	}

	if m.chain != nil {
		pr := m.chain.Run(merged)
		errs = append(errs, pr.Errors()...)
		if v, ok := pr.Value(); ok {
			merged = v
		}
	}

	if merged == nil {
		merged = node.NewMap(nil)
	}

	m.mu.RLock()
	pre := append([]BeforePublishListener(nil), m.beforePublish...)
	m.mu.RUnlock()
	for _, l := range pre {
		l()
	}

	m.mu.Lock()
	m.tree = merged
	m.generation++
	gen := m.generation
	listeners := append([]ReloadListener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		l(gen)
	}

	return result.Of(&merged, errs...)
}

// Generation returns the currently published generation number (0 before
// the first successful Build).
func (m *Manager) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

// Navigate looks up tokens against the currently published generation.
// The tree reference is copied under the shared lock and all further work
// happens against that snapshot, so a concurrent Build cannot hand back a
// partial mix of old and new generations (spec.md §4.4 invariant).
func (m *Manager) Navigate(tokens []path.Token) result.R[*node.Node] {
	m.mu.RLock()
	tree := m.tree
	m.mu.RUnlock()
	return node.Navigate(tree, tokens)
}

// Tree returns the currently published generation's root.
func (m *Manager) Tree() *node.Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree
}
