package wiki

import "sync"

// Registry is the process-wide list of all known recent edits.
// Readers take a snapshot under the lock; nothing ever scans the live
// slice while holding the lock across a network call.
type Registry struct {
	mu    sync.Mutex
	edits []*Edit
}

// NewRegistry creates an empty edit registry
func NewRegistry() *Registry {
	return &Registry{edits: make([]*Edit, 0)}
}

// Add records an edit
func (r *Registry) Add(e *Edit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edits = append(r.edits, e)
}

// Snapshot returns a copy of the current edit list
func (r *Registry) Snapshot() []*Edit {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Edit, len(r.edits))
	copy(out, r.edits)
	return out
}

// Len returns the number of recorded edits
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.edits)
}
