package wiki

import "sync"

// RevertPenalty is added to an author's badness score when one of their
// edits is successfully reverted.
const RevertPenalty = 200

// ReputationStore tracks badness scores per author. Updates are
// last-write-wins; callers treat them as fire-and-forget.
type ReputationStore struct {
	mu     sync.Mutex
	scores map[string]int
}

// NewReputationStore creates an empty reputation store
func NewReputationStore() *ReputationStore {
	return &ReputationStore{scores: make(map[string]int)}
}

// Add adjusts a user's badness score and returns the new value
func (s *ReputationStore) Add(user string, delta int) int {
	key := SanitizeUser(user)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[key] += delta
	return s.scores[key]
}

// Score returns the current badness score for a user
func (s *ReputationStore) Score(user string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scores[SanitizeUser(user)]
}
