// Package frontier tracks crawl progress: pages waiting to be fetched,
// pages already fetched, and image resources queued for the final phase.
//
// A Frontier is safe for concurrent use. Every method takes the lock for
// that call only, so nothing is held while a caller performs network or
// file I/O.
//
// Pages discovered during a round become visible only to the next round's
// SnapshotPending. Two tasks of the same round may both enqueue a page that
// neither has visited yet; the pending set stores it once, and it is fetched
// once in the following round. This is accepted behavior.
package frontier

import (
	"slices"
	"sync"
)

// Frontier is the single source of truth for one crawl.
type Frontier struct {
	mu sync.RWMutex

	// pending holds page suffixes discovered but not yet fetched.
	pending map[string]struct{}

	// visited holds page suffixes whose fetch has been attempted.
	visited map[string]struct{}

	// resources holds image suffixes found on visited pages.
	resources map[string]struct{}
}

// Stats is a point-in-time count of the frontier sets.
type Stats struct {
	Pending   int
	Visited   int
	Resources int
}

// New returns an empty Frontier.
func New() *Frontier {
	return &Frontier{
		pending:   make(map[string]struct{}),
		visited:   make(map[string]struct{}),
		resources: make(map[string]struct{}),
	}
}

// Seed adds the starting page to pending.
// It is meant to be called before any concurrent access begins.
func (f *Frontier) Seed(suffix string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[suffix] = struct{}{}
}

// SnapshotPending returns a sorted copy of the pending set.
// The frontier itself is not modified.
func (f *Frontier) SnapshotPending() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return sortedKeys(f.pending)
}

// MarkVisited moves suffix from pending to visited. Calling it again for
// the same suffix has no further effect.
func (f *Frontier) MarkVisited(suffix string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, suffix)
	f.visited[suffix] = struct{}{}
}

// FilterUnvisited returns the links that are not in visited, in their
// original order.
func (f *Frontier) FilterUnvisited(links []string) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	result := make([]string, 0, len(links))
	for _, link := range links {
		if _, ok := f.visited[link]; ok {
			continue
		}
		result = append(result, link)
	}
	return result
}

// EnqueueLinks adds links to pending. It does not check visited; callers
// run FilterUnvisited first.
func (f *Frontier) EnqueueLinks(links []string) {
	if len(links) == 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, link := range links {
		f.pending[link] = struct{}{}
	}
}

// EnqueueResources adds image suffixes to the resource set.
func (f *Frontier) EnqueueResources(resources []string) {
	if len(resources) == 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range resources {
		f.resources[r] = struct{}{}
	}
}

// isVisited reports whether suffix has been visited.
func (f *Frontier) isVisited(suffix string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.visited[suffix]
	return ok
}

// Visited returns a sorted copy of the visited set.
func (f *Frontier) Visited() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return sortedKeys(f.visited)
}

// Resources returns a sorted copy of the queued resource set.
func (f *Frontier) Resources() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return sortedKeys(f.resources)
}

// Stats returns the current size of each set.
func (f *Frontier) Stats() Stats {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return Stats{
		Pending:   len(f.pending),
		Visited:   len(f.visited),
		Resources: len(f.resources),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
