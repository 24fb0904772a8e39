package http

import (
	"sync"

	"github.com/anishmaharjan/caremap/internal/core/domain"
)

// DraftStore holds per-hospital booking drafts in memory, keyed by the
// hospital's coordinate key. Drafts are scratch state for a note being
// written before the booking is submitted; they never survive a restart.
type DraftStore struct {
	mu     sync.RWMutex
	drafts map[string]domain.BookingDraft
}

// NewDraftStore creates an empty DraftStore.
func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[string]domain.BookingDraft)}
}

// Get returns the draft for a coordinate key. A missing key yields a zero
// draft, which is a valid starting state.
func (s *DraftStore) Get(key string) domain.BookingDraft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drafts[key]
}

// Put replaces the draft for a coordinate key.
func (s *DraftStore) Put(key string, draft domain.BookingDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[key] = draft
}

// Clear removes the draft for a coordinate key, typically after the booking
// was submitted or the editor dismissed.
func (s *DraftStore) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key)
}
