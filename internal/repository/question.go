package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrEmptyBank        = errors.New("question bank is empty")
)

// QuestionRepository provides read-only access to the policy question bank.
// The bank is loaded once from a JSON file and kept in memory.
type QuestionRepository struct {
	questions []entities.Question
	byID      map[int]int
}

// NewQuestionRepository loads the question bank from path.
func NewQuestionRepository(path string) (*QuestionRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return ParseQuestionBank(data)
}

// ParseQuestionBank builds a repository from the JSON document
// {"questions": [...]}.
func ParseQuestionBank(data []byte) (*QuestionRepository, error) {
	var wrapper struct {
		Questions []entities.Question `json:"questions"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions JSON: %w", err)
	}

	return NewQuestionRepositoryFrom(wrapper.Questions)
}

// NewQuestionRepositoryFrom builds a repository over an in-memory bank.
func NewQuestionRepositoryFrom(questions []entities.Question) (*QuestionRepository, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyBank
	}

	byID := make(map[int]int, len(questions))
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, err
		}
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %d", q.ID)
		}
		byID[q.ID] = i
	}

	return &QuestionRepository{
		questions: questions,
		byID:      byID,
	}, nil
}

// GetAll returns the whole bank. Callers must not modify the slice.
func (r *QuestionRepository) GetAll() []entities.Question {
	return r.questions
}

// GetByID returns the question with the given id.
func (r *QuestionRepository) GetByID(id int) (entities.Question, error) {
	idx, ok := r.byID[id]
	if !ok {
		return entities.Question{}, fmt.Errorf("%w: %d", ErrQuestionNotFound, id)
	}
	return r.questions[idx], nil
}

// Len returns the number of questions in the bank.
func (r *QuestionRepository) Len() int {
	return len(r.questions)
}
