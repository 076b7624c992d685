package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/safeguard-bot/internal/metrics"
	"github.com/aliskhannn/safeguard-bot/internal/storage"
)

// QuizView is a snapshot of a session taken under the storage lock.
type QuizView struct {
	State         entities.QuizState
	Outcome       entities.AnswerOutcome // outcome of the answer that produced the view
	Position      int
	Total         int
	Question      entities.Question // current question while presenting or explaining
	WrongAttempts int
	MaxAttempts   int
	Result        *entities.TestResult // set once finished
}

// QuizService runs certification quizzes, one live session per user.
type QuizService struct {
	bank     QuestionBank
	users    UserRepository
	results  ResultRepository
	notifier Notifier
	sessions *storage.QuizStorage
	cfg      entities.QuizConfig
	logger   *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
	clock func() time.Time
}

// NewQuizService creates a QuizService. rng drives question selection.
func NewQuizService(
	bank QuestionBank,
	users UserRepository,
	results ResultRepository,
	notifier Notifier,
	sessions *storage.QuizStorage,
	cfg entities.QuizConfig,
	rng *rand.Rand,
	clock func() time.Time,
	logger *zap.Logger,
) *QuizService {
	if clock == nil {
		clock = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &QuizService{
		bank:     bank,
		users:    users,
		results:  results,
		notifier: notifier,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
		rng:      rng,
		clock:    clock,
	}
}

// Config returns the quiz configuration in use.
func (s *QuizService) Config() entities.QuizConfig {
	return s.cfg
}

// PoolSize returns the number of questions the quiz draws from.
func (s *QuizService) PoolSize() int {
	return s.bank.Len()
}

// Start selects questions for a new session.
func (s *QuizService) Start(_ context.Context, userID string) (QuizView, error) {
	s.rngMu.Lock()
	session, err := entities.NewQuizSession(s.bank.GetAll(), s.cfg, s.rng, s.clock)
	s.rngMu.Unlock()
	if err != nil {
		return QuizView{}, fmt.Errorf("start quiz: %w", err)
	}

	if !s.sessions.StoreIfIdle(userID, session) {
		return QuizView{}, ErrQuizInProgress
	}
	metrics.QuizzesActive.Inc()

	s.logger.Info("quiz started",
		zap.String("user_id", userID),
		zap.Int("questions", session.Total()),
	)

	return snapshot(session, ""), nil
}

// Current returns the state of the user's live session.
func (s *QuizService) Current(userID string) (QuizView, error) {
	var view QuizView
	err := s.sessions.Update(userID, func(session *entities.QuizSession) error {
		view = snapshot(session, "")
		return nil
	})
	return view, err
}

// Answer submits option for the question at position.
// When the answer finishes the quiz the view carries the result even if
// persisting or notifying failed.
func (s *QuizService) Answer(ctx context.Context, userID string, position, option int) (QuizView, error) {
	var (
		view   QuizView
		result *entities.TestResult
	)

	err := s.sessions.Update(userID, func(session *entities.QuizSession) error {
		outcome, err := session.Submit(position, option)
		if err != nil {
			return err
		}
		view = snapshot(session, outcome)
		result = view.Result
		return nil
	})
	if err != nil {
		return QuizView{}, err
	}

	if result != nil {
		return view, s.complete(ctx, userID, *result)
	}
	return view, nil
}

// Continue moves past an explanation.
func (s *QuizService) Continue(ctx context.Context, userID string) (QuizView, error) {
	var view QuizView

	err := s.sessions.Update(userID, func(session *entities.QuizSession) error {
		if err := session.Continue(); err != nil {
			return err
		}
		view = snapshot(session, "")
		return nil
	})
	if err != nil {
		return QuizView{}, err
	}

	if view.Result != nil {
		return view, s.complete(ctx, userID, *view.Result)
	}
	return view, nil
}

// Cancel abandons the live session without producing a result.
func (s *QuizService) Cancel(userID string) error {
	err := s.sessions.Update(userID, func(session *entities.QuizSession) error {
		session.Cancel()
		return nil
	})
	if err != nil {
		return err
	}

	metrics.QuizzesActive.Dec()
	s.logger.Info("quiz cancelled", zap.String("user_id", userID))
	return nil
}

// complete stores and announces a finished result.
func (s *QuizService) complete(ctx context.Context, userID string, result entities.TestResult) error {
	metrics.QuizzesActive.Dec()
	metrics.TestsCompleted.WithLabelValues(outcomeLabel(result.Passed)).Inc()

	s.logger.Info("quiz finished",
		zap.String("user_id", userID),
		zap.Int("score", result.Score),
		zap.Bool("passed", result.Passed),
	)

	var errs []error

	persisted := true
	if err := s.results.Append(ctx, userID, result); err != nil {
		persisted = false
		s.sessions.AddPending(userID, result)
		metrics.ResultsPending.Inc()
		s.logger.Error("failed to persist result",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("%w: %w", ErrResultNotPersisted, err))
	}

	if err := s.notifyCompleted(ctx, userID, result, persisted); err != nil {
		metrics.NotificationsFailed.WithLabelValues(metrics.KindTestCompleted).Inc()
		s.logger.Warn("failed to notify test completion",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("%w: %w", ErrNotificationNotSent, err))
	}

	return errors.Join(errs...)
}

func (s *QuizService) notifyCompleted(ctx context.Context, userID string, result entities.TestResult, persisted bool) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !persisted {
		user.Results = append(user.Results, result)
	}
	return s.notifier.NotifyTestCompleted(ctx, user, result)
}

// RetryPending re-appends results that could not be stored earlier.
// Results that fail again stay pending. Results of users that no longer
// exist are dropped.
func (s *QuizService) RetryPending(ctx context.Context) error {
	var errs []error

	for _, userID := range s.sessions.PendingUsers() {
		pending := s.sessions.TakePending(userID)
		for i, result := range pending {
			if err := s.results.Append(ctx, userID, result); err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					dropped := len(pending) - i
					metrics.ResultsPending.Sub(float64(dropped))
					s.logger.Warn("dropping pending results of deleted user",
						zap.String("user_id", userID),
						zap.Int("results", dropped),
					)
					break
				}
				for _, rest := range pending[i:] {
					s.sessions.AddPending(userID, rest)
				}
				errs = append(errs, fmt.Errorf("%w: user %s: %w", ErrResultNotPersisted, userID, err))
				break
			}

			metrics.ResultsPending.Dec()
			s.logger.Info("pending result persisted",
				zap.String("user_id", userID),
				zap.Time("taken_at", result.TakenAt),
			)
		}
	}

	return errors.Join(errs...)
}

// HasPending reports whether the user has results waiting to be stored.
func (s *QuizService) HasPending(userID string) bool {
	return s.sessions.PendingCount(userID) > 0
}

func snapshot(session *entities.QuizSession, outcome entities.AnswerOutcome) QuizView {
	view := QuizView{
		State:         session.State(),
		Outcome:       outcome,
		Position:      session.Position(),
		Total:         session.Total(),
		WrongAttempts: session.WrongAttempts(),
		MaxAttempts:   session.Config().MaxAttempts,
	}

	if q, ok := session.Current(); ok {
		view.Question = q
	}
	if result, err := session.Result(); err == nil {
		view.Result = &result
	}

	return view
}

func outcomeLabel(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}
