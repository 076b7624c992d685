package telegram

import (
	"context"
	"errors"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/safeguard-bot/internal/service"
	"github.com/aliskhannn/safeguard-bot/internal/storage"
)

var (
	fixedNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	errSend  = errors.New("send failed")
)

// fakeSender records everything the bot sends.
type fakeSender struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	requests  []tgbotapi.Chattable
	failChats map[int64]bool
	nextID    int
}

func chatOf(c tgbotapi.Chattable) int64 {
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		return v.ChatID
	case tgbotapi.EditMessageTextConfig:
		return v.ChatID
	}
	return 0
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failChats[chatOf(c)] {
		return tgbotapi.Message{}, errSend
	}
	s.sent = append(s.sent, c)
	s.nextID++
	return tgbotapi.Message{MessageID: s.nextID}, nil
}

func (s *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (s *fakeSender) messages() []tgbotapi.MessageConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range s.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (s *fakeSender) edits() []tgbotapi.EditMessageTextConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []tgbotapi.EditMessageTextConfig
	for _, c := range s.sent {
		if e, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			out = append(out, e)
		}
	}
	return out
}

func (s *fakeSender) callbackAnswers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb.Text)
		}
	}
	return out
}

// fakeUsers serves a fixed set of linked users.
type fakeUsers struct {
	byChat map[int64]*entities.User
}

func (f *fakeUsers) Register(_ context.Context, in service.RegisterInput) (*entities.User, error) {
	u, err := entities.NewUser("new", in.Email, in.Name, in.Grade)
	if err != nil {
		return nil, err
	}
	u.TelegramChatID = in.ChatID
	f.byChat[in.ChatID] = u
	return u, nil
}

func (f *fakeUsers) LinkChat(context.Context, string, string, int64) (*entities.User, error) {
	return nil, service.ErrInvalidCredentials
}

func (f *fakeUsers) ByChat(_ context.Context, chatID int64) (*entities.User, error) {
	u, ok := f.byChat[chatID]
	if !ok {
		return nil, service.ErrChatNotLinked
	}
	return u, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id string, upd entities.ProfileUpdate) (*entities.User, error) {
	for _, u := range f.byChat {
		if u.ID == id {
			upd.Apply(u)
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) Status(_ context.Context, id string) (*service.Dashboard, error) {
	for _, u := range f.byChat {
		if u.ID == id {
			return service.NewDashboard(u, fixedNow), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// fakeQuiz replays scripted views.
type fakeQuiz struct {
	current   service.QuizView
	answer    service.QuizView
	answerErr error
	startErr  error
	cancelled bool
}

func (f *fakeQuiz) Start(context.Context, string) (service.QuizView, error) {
	return f.current, f.startErr
}

func (f *fakeQuiz) Current(string) (service.QuizView, error) {
	return f.current, nil
}

func (f *fakeQuiz) Answer(context.Context, string, int, int) (service.QuizView, error) {
	return f.answer, f.answerErr
}

func (f *fakeQuiz) Continue(context.Context, string) (service.QuizView, error) {
	return f.answer, nil
}

func (f *fakeQuiz) Cancel(string) error {
	f.cancelled = true
	return nil
}

func (f *fakeQuiz) HasPending(string) bool { return false }

func (f *fakeQuiz) PoolSize() int { return 49 }

// fakeRoster records deletions.
type fakeRoster struct {
	deleteErr error
	deleted   []string
}

func (f *fakeRoster) Roster(_ context.Context, filter entities.RosterFilter) (*service.RosterReport, error) {
	return &service.RosterReport{Filter: filter, Now: fixedNow}, nil
}

func (f *fakeRoster) SendReminders(context.Context) (service.ReminderBatch, error) {
	return service.ReminderBatch{}, nil
}

func (f *fakeRoster) DeleteUser(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

type fakeAdmins struct{}

func (fakeAdmins) GetByEmail(context.Context, string) (*entities.User, error) {
	return nil, repository.ErrUserNotFound
}

func sampleQuestion() entities.Question {
	return entities.Question{
		ID:           3,
		Text:         "Who may be alone with a child?",
		Options:      []string{"Anyone", "Nobody", "Parents only"},
		CorrectIndex: 1,
		FalseIndex:   0,
		Explanation:  "The two-adult rule applies at all times.",
	}
}

func presenting(position int) service.QuizView {
	return service.QuizView{
		State:       entities.QuizPresenting,
		Position:    position,
		Total:       10,
		Question:    sampleQuestion(),
		MaxAttempts: 3,
	}
}

type handlerFixture struct {
	handler *Handler
	bot     *fakeSender
	quiz    *fakeQuiz
	roster  *fakeRoster
}

func newHandlerFixture(users ...*entities.User) handlerFixture {
	byChat := make(map[int64]*entities.User)
	for _, u := range users {
		byChat[u.TelegramChatID] = u
	}

	bot := &fakeSender{}
	quiz := &fakeQuiz{current: presenting(0)}
	roster := &fakeRoster{}

	h := NewHandler(
		bot, zap.NewNop(),
		&fakeUsers{byChat: byChat}, quiz, roster, fakeAdmins{},
		storage.NewMessageStorage(), storage.NewRegistrationStorage(time.Hour),
		80, 0,
	)
	return handlerFixture{handler: h, bot: bot, quiz: quiz, roster: roster}
}
