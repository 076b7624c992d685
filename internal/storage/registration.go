package storage

import (
	"sync"
	"time"
)

// RegistrationDraft holds the account fields collected before the grade is chosen.
type RegistrationDraft struct {
	Email     string
	Password  string
	Name      string
	CreatedAt time.Time
}

// RegistrationStorage keeps unfinished registrations by chat ID.
// Drafts older than ttl are discarded on read.
type RegistrationStorage struct {
	mu     sync.Mutex
	drafts map[int64]RegistrationDraft
	ttl    time.Duration
}

func NewRegistrationStorage(ttl time.Duration) *RegistrationStorage {
	return &RegistrationStorage{
		drafts: make(map[int64]RegistrationDraft),
		ttl:    ttl,
	}
}

func (s *RegistrationStorage) Store(chatID int64, draft RegistrationDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now()
	}
	s.drafts[chatID] = draft
}

// Take removes and returns the draft of a chat if it has not expired.
func (s *RegistrationStorage) Take(chatID int64) (RegistrationDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[chatID]
	delete(s.drafts, chatID)
	if !ok || time.Since(draft.CreatedAt) > s.ttl {
		return RegistrationDraft{}, false
	}
	return draft, true
}
