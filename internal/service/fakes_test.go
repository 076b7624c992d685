package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/infra/postgres/repository"
)

var (
	fixedNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	errStore = errors.New("store unavailable")
	errSend  = errors.New("send failed")
)

func fixedClock() time.Time { return fixedNow }

// memUsers is an in-memory UserRepository.
type memUsers struct {
	mu        sync.Mutex
	users     map[string]*entities.User
	order     []string
	listErr   error
	deleteErr error
}

func newMemUsers(users ...*entities.User) *memUsers {
	m := &memUsers{users: make(map[string]*entities.User)}
	for _, u := range users {
		m.users[u.ID] = u
		m.order = append(m.order, u.ID)
	}
	return m
}

func clone(u *entities.User) *entities.User {
	c := *u
	c.Results = slices.Clone(u.Results)
	return &c
}

func (m *memUsers) Create(_ context.Context, user *entities.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	m.users[user.ID] = clone(user)
	m.order = append(m.order, user.ID)
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return clone(u), nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	return m.find(func(u *entities.User) bool { return u.Email == email })
}

func (m *memUsers) GetByChatID(_ context.Context, chatID int64) (*entities.User, error) {
	return m.find(func(u *entities.User) bool { return u.TelegramChatID == chatID })
}

func (m *memUsers) find(match func(*entities.User) bool) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if u, ok := m.users[id]; ok && match(u) {
			return clone(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) List(_ context.Context) ([]*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*entities.User
	for _, id := range m.order {
		if u, ok := m.users[id]; ok {
			out = append(out, clone(u))
		}
	}
	return out, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id string, upd entities.ProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	upd.Apply(u)
	return nil
}

func (m *memUsers) LinkChat(_ context.Context, id string, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.TelegramChatID = chatID
	return nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUsers) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[id]
	return ok
}

// memResults appends into memUsers, failing while err is set.
type memResults struct {
	mu       sync.Mutex
	users    *memUsers
	err      error
	appended int
}

func (r *memResults) Append(_ context.Context, userID string, result entities.TestResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}

	r.users.mu.Lock()
	defer r.users.mu.Unlock()
	u, ok := r.users.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Results = append(u.Results, result)
	r.appended++
	return nil
}

func (r *memResults) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

type memCredentials struct {
	users  *memUsers
	hashes map[string]string
}

func (c *memCredentials) Save(_ context.Context, userID, hash string) error {
	if c.hashes == nil {
		c.hashes = make(map[string]string)
	}
	c.hashes[userID] = hash
	return nil
}

func (c *memCredentials) PasswordHash(ctx context.Context, email string) (string, error) {
	u, err := c.users.GetByEmail(ctx, email)
	if err != nil {
		return "", repository.ErrCredentialsNotFound
	}
	hash, ok := c.hashes[u.ID]
	if !ok {
		return "", repository.ErrCredentialsNotFound
	}
	return hash, nil
}

type recordingNotifier struct {
	mu         sync.Mutex
	completed  []entities.TestResult
	completedU []*entities.User
	deleted    []string
	reminded   [][]string

	completedErr error
	deletedErr   error
	failReminder map[string]bool
}

func (n *recordingNotifier) NotifyTestCompleted(_ context.Context, user *entities.User, result entities.TestResult) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.completedErr != nil {
		return n.completedErr
	}
	n.completed = append(n.completed, result)
	n.completedU = append(n.completedU, user)
	return nil
}

func (n *recordingNotifier) NotifyAccountDeleted(_ context.Context, user *entities.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.deletedErr != nil {
		return n.deletedErr
	}
	n.deleted = append(n.deleted, user.ID)
	return nil
}

func (n *recordingNotifier) NotifyComplianceReminder(_ context.Context, users []*entities.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var ids []string
	batchErr := &BatchError{}
	for _, u := range users {
		ids = append(ids, u.ID)
		if n.failReminder[u.ID] {
			batchErr.Add(u.ID, errSend)
		}
	}
	n.reminded = append(n.reminded, ids)
	return batchErr.ErrOrNil()
}

type inlineTx struct{}

func (inlineTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type sliceBank []entities.Question

func (b sliceBank) GetAll() []entities.Question { return b }
func (b sliceBank) Len() int                    { return len(b) }

func testBank(n int) sliceBank {
	bank := make(sliceBank, n)
	for i := range bank {
		bank[i] = entities.Question{
			ID:           i + 1,
			Text:         "question",
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: i % 4,
			FalseIndex:   (i + 1) % 4,
			Explanation:  "because",
		}
	}
	return bank
}

func passedAt(t time.Time) entities.TestResult {
	return entities.TestResult{TakenAt: t, Score: 90, Passed: true}
}
