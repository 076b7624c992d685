package entities

import "time"

// QuestionAttempt records how a single presented question was answered.
type QuestionAttempt struct {
	QuestionID int  `json:"questionId"`
	Attempts   int  `json:"attempts"`  // submissions used, 1..MaxAttempts
	IsCorrect  bool `json:"isCorrect"` // true only if the correct option was chosen
}

// TestResult is the immutable outcome of one finished quiz session.
// Details keep the presentation order of the questions.
type TestResult struct {
	TakenAt time.Time         `json:"date"`
	Score   int               `json:"score"`
	Passed  bool              `json:"passed"`
	Details []QuestionAttempt `json:"questionDetails"`
}

// CorrectCount returns the number of questions answered correctly on any attempt.
func (r TestResult) CorrectCount() int {
	n := 0
	for _, a := range r.Details {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

// FirstTryCount returns the number of questions answered correctly on the first attempt.
func (r TestResult) FirstTryCount() int {
	n := 0
	for _, a := range r.Details {
		if a.IsCorrect && a.Attempts == 1 {
			n++
		}
	}
	return n
}

// LastSuccess returns the date of the chronologically latest passing result.
func LastSuccess(history []TestResult) (time.Time, bool) {
	var (
		last  time.Time
		found bool
	)
	for _, r := range history {
		if !r.Passed {
			continue
		}
		if !found || r.TakenAt.After(last) {
			last = r.TakenAt
			found = true
		}
	}
	return last, found
}
