package entities

import (
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"
)

var (
	ErrInvalidEmail = errors.New("invalid email")
	ErrInvalidName  = errors.New("invalid name")
	ErrInvalidGrade = errors.New("unknown grade")
)

// Grades lists the classes a staff member can be assigned to.
var Grades = []string{
	"Nursery", "Pre-School", "Grade R",
	"Grade 1", "Grade 2", "Grade 3", "Grade 4", "Grade 5", "Grade 6", "Grade 7",
	"Youth", "Administration",
}

// User is a staff member of the children's ministry.
type User struct {
	ID             string
	Email          string
	Name           string
	GradeTaught    string
	IntendToTeach  bool // still teaching in the current cycle
	IsAdmin        bool
	TelegramChatID int64 // 0 when no chat is linked
	CreatedAt      time.Time
	Results        []TestResult // append-only, chronological
}

// NewUser creates a user that intends to teach and has no results yet.
func NewUser(id, email, name, grade string) (*User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if !ValidGrade(grade) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGrade, grade)
	}

	return &User{
		ID:            id,
		Email:         email,
		Name:          name,
		GradeTaught:   grade,
		IntendToTeach: true,
		CreatedAt:     time.Now(),
	}, nil
}

// LastSuccess returns the date of the latest passing result.
func (u *User) LastSuccess() (time.Time, bool) {
	return LastSuccess(u.Results)
}

// Compliance evaluates the user's certification at now.
func (u *User) Compliance(now time.Time) Compliance {
	return EvaluateCompliance(u.Results, now)
}

// LatestResult returns the most recently appended result.
func (u *User) LatestResult() (TestResult, bool) {
	if len(u.Results) == 0 {
		return TestResult{}, false
	}
	return u.Results[len(u.Results)-1], true
}

// HasChat reports whether notifications can reach the user over Telegram.
func (u *User) HasChat() bool {
	return u.TelegramChatID != 0
}

// ProfileUpdate holds the editable profile fields. Nil fields stay unchanged.
type ProfileUpdate struct {
	Name          *string
	GradeTaught   *string
	IntendToTeach *bool
}

// Validate normalizes and checks the set fields.
func (p *ProfileUpdate) Validate() error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return ErrInvalidName
		}
		p.Name = &name
	}
	if p.GradeTaught != nil && !ValidGrade(*p.GradeTaught) {
		return fmt.Errorf("%w: %q", ErrInvalidGrade, *p.GradeTaught)
	}
	return nil
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.GradeTaught == nil && p.IntendToTeach == nil
}

// Apply copies the set fields onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.GradeTaught != nil {
		u.GradeTaught = *p.GradeTaught
	}
	if p.IntendToTeach != nil {
		u.IntendToTeach = *p.IntendToTeach
	}
}

// ValidGrade reports whether grade is one of Grades.
func ValidGrade(grade string) bool {
	return slices.Contains(Grades, grade)
}

// NormalizeEmail lower-cases and validates an address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return email, nil
}
