package storage

import (
	"errors"
	"sync"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
)

var ErrNoActiveQuiz = errors.New("no active quiz")

// QuizStorage keeps in-memory quiz state by user ID: the live session and
// finished results that could not be persisted yet.
type QuizStorage struct {
	mu       sync.Mutex
	sessions map[string]*entities.QuizSession
	pending  map[string][]entities.TestResult
}

// NewQuizStorage creates a new QuizStorage.
func NewQuizStorage() *QuizStorage {
	return &QuizStorage{
		sessions: make(map[string]*entities.QuizSession),
		pending:  make(map[string][]entities.TestResult),
	}
}

// StoreIfIdle saves the session unless the user already has a live one.
// It reports whether the session was stored.
func (s *QuizStorage) StoreIfIdle(userID string, session *entities.QuizSession) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.live(userID) {
		return false
	}
	s.sessions[userID] = session
	return true
}

// live reports whether the user has a session that is not finished or cancelled.
func (s *QuizStorage) live(userID string) bool {
	session, ok := s.sessions[userID]
	if !ok {
		return false
	}
	state := session.State()
	return state == entities.QuizPresenting || state == entities.QuizExplaining
}

// Update runs fn on the user's session while holding the lock.
// Sessions that reach a terminal state are dropped.
func (s *QuizStorage) Update(userID string, fn func(*entities.QuizSession) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return ErrNoActiveQuiz
	}

	err := fn(session)

	switch session.State() {
	case entities.QuizFinished, entities.QuizCancelled:
		delete(s.sessions, userID)
	}

	return err
}

// Delete removes the session of a user.
func (s *QuizStorage) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// AddPending keeps a result that still has to be persisted.
func (s *QuizStorage) AddPending(userID string, result entities.TestResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[userID] = append(s.pending[userID], result)
}

// TakePending removes and returns the pending results of a user, oldest first.
func (s *QuizStorage) TakePending(userID string) []entities.TestResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := s.pending[userID]
	delete(s.pending, userID)
	return results
}

// PendingCount returns the number of unpersisted results of a user.
func (s *QuizStorage) PendingCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending[userID])
}

// PendingUsers returns the IDs of users with unpersisted results.
func (s *QuizStorage) PendingUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	return ids
}
