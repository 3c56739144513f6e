package refstore

import (
	"sync"

	"github.com/citeproc-go/engine/cerr"
)

// Store owns one engine instance's reference records. References are
// immutable once inserted — Insert atomically replaces the pointer for an
// id, it never mutates an existing *Reference in place, so every other
// holder of an old pointer keeps observing the old value, so pointer
// identity tells whether a reference changed. The incremental store
// (package store) does not rely on this; it re-renders every reference.
type Store struct {
	mu   sync.RWMutex
	refs map[string]*Reference
	// rev increments on every mutation; used by callers that want a
	// cheap "has anything at all changed" check without walking refs.
	rev uint64
}

// New returns an empty reference store.
func New() *Store {
	return &Store{refs: make(map[string]*Reference)}
}

// Insert validates and atomically installs one reference, replacing any
// existing record with the same ID.
func (s *Store) Insert(ref *Reference) error {
	if ref.ID == "" {
		return cerr.Field("id", "reference id must not be empty")
	}
	if !IsKnownType(ref.Type) {
		return cerr.Field("type", "unknown reference type %q", ref.Type)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[ref.ID] = ref
	s.rev++
	return nil
}

// InsertMany validates every reference before installing any of them, so
// a single malformed record in a batch rejects the whole batch without
// partial state mutation (spec.md §7 "Propagation").
func (s *Store) InsertMany(refs []*Reference) error {
	for _, ref := range refs {
		if ref.ID == "" {
			return cerr.Field("id", "reference id must not be empty")
		}
		if !IsKnownType(ref.Type) {
			return cerr.Field("type", "unknown reference type %q", ref.Type)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range refs {
		s.refs[ref.ID] = ref
	}
	s.rev++
	return nil
}

// Reset replaces the entire reference set atomically.
func (s *Store) Reset(refs []*Reference) error {
	next := make(map[string]*Reference, len(refs))
	for _, ref := range refs {
		if ref.ID == "" {
			return cerr.Field("id", "reference id must not be empty")
		}
		if !IsKnownType(ref.Type) {
			return cerr.Field("type", "unknown reference type %q", ref.Type)
		}
		next[ref.ID] = ref
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs = next
	s.rev++
	return nil
}

// Remove deletes a reference. Removing an unknown id is a no-op, matching
// the teacher's idempotent-by-design DDL generation philosophy.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refs[id]; ok {
		delete(s.refs, id)
		s.rev++
	}
}

// Get returns the current *Reference for id, or nil if unknown. The
// returned pointer is stable until the next Insert/Reset/Remove touching
// that id.
func (s *Store) Get(id string) *Reference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refs[id]
}

// All returns every reference id currently known, in no particular order.
func (s *Store) All() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.refs))
	for id := range s.refs {
		ids = append(ids, id)
	}
	return ids
}

// Revision returns the store's monotonic mutation counter.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}
