package entities

import (
	"errors"
	"fmt"
)

var ErrInvalidQuestion = errors.New("invalid question")

// Question is a single knowledge-check item of the policy question bank.
// Questions are defined once and never mutated at runtime.
type Question struct {
	ID           int      `json:"id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	FalseIndex   int      `json:"falseIndex"` // trap option, used for emphasis only
	Explanation  string   `json:"explanation"`
}

// Validate checks that option indexes point into Options.
func (q Question) Validate() error {
	if q.ID <= 0 {
		return fmt.Errorf("%w: id %d", ErrInvalidQuestion, q.ID)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: question %d has %d options", ErrInvalidQuestion, q.ID, len(q.Options))
	}
	if !q.HasOption(q.CorrectIndex) {
		return fmt.Errorf("%w: question %d correct index %d", ErrInvalidQuestion, q.ID, q.CorrectIndex)
	}
	if !q.HasOption(q.FalseIndex) {
		return fmt.Errorf("%w: question %d false index %d", ErrInvalidQuestion, q.ID, q.FalseIndex)
	}
	return nil
}

// HasOption reports whether option is a valid index into Options.
func (q Question) HasOption(option int) bool {
	return option >= 0 && option < len(q.Options)
}

// IsCorrect reports whether option is the correct one. Correctness is
// judged by option identity only.
func (q Question) IsCorrect(option int) bool {
	return option == q.CorrectIndex
}
