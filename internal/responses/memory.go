package responses

import (
	"context"
	"sync"

	"github.com/anpi-survey/backend/internal/models"
)

// MemoryStore keeps responses in process. Used for local runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]models.SurveyResponse
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]models.SurveyResponse)}
}

// Put inserts or replaces the record for r.RespondentEmail.
func (s *MemoryStore) Put(_ context.Context, r models.SurveyResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	answers := make(map[string]string, len(r.Answers))
	for k, v := range r.Answers {
		answers[k] = v
	}
	r.Answers = answers
	s.items[r.RespondentEmail] = r
	return nil
}

// Scan returns every record ordered by email.
func (s *MemoryStore) Scan(_ context.Context) ([]models.SurveyResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SurveyResponse, 0, len(s.items))
	for _, r := range s.items {
		out = append(out, r)
	}
	sortByEmail(out)
	return out, nil
}

// DeleteMany removes the records for the given emails.
func (s *MemoryStore) DeleteMany(_ context.Context, emails []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range emails {
		delete(s.items, e)
	}
	return nil
}

// Len returns the number of live records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
