package entities

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	ErrInvalidQuizConfig  = errors.New("invalid quiz config")
	ErrNotEnoughQuestions = errors.New("not enough questions in the bank")
	ErrInvalidOption      = errors.New("invalid option index")
	ErrStaleAnswer        = errors.New("answer is not for the current question")
	ErrNotPresenting      = errors.New("quiz is not waiting for an answer")
	ErrNotExplaining      = errors.New("quiz is not showing an explanation")
	ErrQuizNotFinished    = errors.New("quiz is not finished")
)

// Certification policy defaults.
const (
	DefaultQuestionCount = 20
	DefaultMaxAttempts   = 2
	DefaultPassScore     = 80
)

// QuizConfig holds the policy parameters of a quiz session.
type QuizConfig struct {
	QuestionCount int // questions drawn per session
	MaxAttempts   int // submissions allowed per question
	PassScore     int // minimal passing score, percent
}

// DefaultQuizConfig returns the certification policy: 20 questions,
// two attempts per question, 80% to pass.
func DefaultQuizConfig() QuizConfig {
	return QuizConfig{
		QuestionCount: DefaultQuestionCount,
		MaxAttempts:   DefaultMaxAttempts,
		PassScore:     DefaultPassScore,
	}
}

// Validate checks the config values.
func (c QuizConfig) Validate() error {
	switch {
	case c.QuestionCount <= 0:
		return fmt.Errorf("%w: question count %d", ErrInvalidQuizConfig, c.QuestionCount)
	case c.MaxAttempts <= 0:
		return fmt.Errorf("%w: max attempts %d", ErrInvalidQuizConfig, c.MaxAttempts)
	case c.PassScore < 0 || c.PassScore > 100:
		return fmt.Errorf("%w: pass score %d", ErrInvalidQuizConfig, c.PassScore)
	}
	return nil
}

// QuizState is the state of a quiz session.
type QuizState string

const (
	QuizPresenting QuizState = "presenting" // current question waits for an answer
	QuizExplaining QuizState = "explaining" // current question failed, explanation shown
	QuizFinished   QuizState = "finished"
	QuizCancelled  QuizState = "cancelled"
)

// AnswerOutcome describes what a submitted answer did to the session.
type AnswerOutcome string

const (
	OutcomeCorrect AnswerOutcome = "correct" // recorded, session advanced
	OutcomeRetry   AnswerOutcome = "retry"   // wrong, same question again
	OutcomeFailed  AnswerOutcome = "failed"  // wrong on the last attempt, explanation due
)

// QuizSession runs exactly one certification attempt. A session is owned
// by a single caller and is not safe for concurrent use.
type QuizSession struct {
	cfg       QuizConfig
	questions []Question
	position  int
	wrong     int // incorrect submissions on the current question
	attempts  []QuestionAttempt
	state     QuizState
	startedAt time.Time
	clock     func() time.Time
	result    *TestResult
}

// NewQuizSession draws cfg.QuestionCount distinct questions from bank using
// rng and returns a session presenting the first one. A nil clock means time.Now.
func NewQuizSession(bank []Question, cfg QuizConfig, rng *rand.Rand, clock func() time.Time) (*QuizSession, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(bank) < cfg.QuestionCount {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughQuestions, cfg.QuestionCount, len(bank))
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if clock == nil {
		clock = time.Now
	}

	// Perm is a Fisher–Yates permutation, so every prefix is uniform.
	perm := rng.Perm(len(bank))
	questions := make([]Question, 0, cfg.QuestionCount)
	for _, idx := range perm[:cfg.QuestionCount] {
		questions = append(questions, bank[idx])
	}

	return &QuizSession{
		cfg:       cfg,
		questions: questions,
		attempts:  make([]QuestionAttempt, 0, cfg.QuestionCount),
		state:     QuizPresenting,
		startedAt: clock(),
		clock:     clock,
	}, nil
}

// State returns the current state.
func (s *QuizSession) State() QuizState { return s.state }

// Config returns the policy the session runs with.
func (s *QuizSession) Config() QuizConfig { return s.cfg }

// StartedAt returns the time the session was created.
func (s *QuizSession) StartedAt() time.Time { return s.startedAt }

// Position returns the zero-based index of the current question.
func (s *QuizSession) Position() int { return s.position }

// Total returns the number of questions in the session.
func (s *QuizSession) Total() int { return len(s.questions) }

// WrongAttempts returns the number of incorrect submissions on the current question.
func (s *QuizSession) WrongAttempts() int { return s.wrong }

// Current returns the question at the current position. It is valid while
// presenting or explaining.
func (s *QuizSession) Current() (Question, bool) {
	if s.state != QuizPresenting && s.state != QuizExplaining {
		return Question{}, false
	}
	return s.questions[s.position], true
}

// Questions returns the drawn questions in presentation order.
func (s *QuizSession) Questions() []Question {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Attempts returns the attempt log recorded so far.
func (s *QuizSession) Attempts() []QuestionAttempt {
	out := make([]QuestionAttempt, len(s.attempts))
	copy(out, s.attempts)
	return out
}

// Submit grades option for the question at position. Rejected submissions
// leave the session untouched.
func (s *QuizSession) Submit(position, option int) (AnswerOutcome, error) {
	if s.state != QuizPresenting {
		return "", ErrNotPresenting
	}
	if position != s.position {
		return "", fmt.Errorf("%w: got %d, current %d", ErrStaleAnswer, position, s.position)
	}

	q := s.questions[s.position]
	if !q.HasOption(option) {
		return "", fmt.Errorf("%w: %d", ErrInvalidOption, option)
	}

	if q.IsCorrect(option) {
		s.attempts = append(s.attempts, QuestionAttempt{
			QuestionID: q.ID,
			Attempts:   s.wrong + 1,
			IsCorrect:  true,
		})
		s.advance()
		return OutcomeCorrect, nil
	}

	s.wrong++
	if s.wrong < s.cfg.MaxAttempts {
		return OutcomeRetry, nil
	}

	s.attempts = append(s.attempts, QuestionAttempt{
		QuestionID: q.ID,
		Attempts:   s.cfg.MaxAttempts,
		IsCorrect:  false,
	})
	s.state = QuizExplaining
	return OutcomeFailed, nil
}

// Continue leaves the explanation of a failed question.
func (s *QuizSession) Continue() error {
	if s.state != QuizExplaining {
		return ErrNotExplaining
	}
	s.state = QuizPresenting
	s.advance()
	return nil
}

// Cancel abandons the session. No result is produced.
func (s *QuizSession) Cancel() {
	if s.state == QuizFinished {
		return
	}
	s.state = QuizCancelled
}

// Result returns the test result of a finished session.
func (s *QuizSession) Result() (TestResult, error) {
	if s.state != QuizFinished || s.result == nil {
		return TestResult{}, ErrQuizNotFinished
	}
	r := *s.result
	r.Details = make([]QuestionAttempt, len(s.result.Details))
	copy(r.Details, s.result.Details)
	return r, nil
}

func (s *QuizSession) advance() {
	s.wrong = 0
	if s.position+1 < len(s.questions) {
		s.position++
		return
	}
	s.finish()
}

func (s *QuizSession) finish() {
	details := make([]QuestionAttempt, len(s.attempts))
	copy(details, s.attempts)

	score := Score(len(details), TestResult{Details: details}.CorrectCount())
	s.result = &TestResult{
		TakenAt: s.clock(),
		Score:   score,
		Passed:  score >= s.cfg.PassScore,
		Details: details,
	}
	s.state = QuizFinished
}

// Score converts a number of correct answers into a percentage. With the
// default 20 questions every correct answer is worth 5 points.
func Score(total, correct int) int {
	if total <= 0 {
		return 0
	}
	return correct * 100 / total
}
