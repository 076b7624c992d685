package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
)

func newUserFixture() (*UserService, *memUsers) {
	users := newMemUsers()
	creds := &memCredentials{users: users}
	svc := NewUserService(users, creds, inlineTx{}, []string{" Admin@Church.org "}, fixedClock, zap.NewNop())
	return svc, users
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Email:    "Teacher@Church.org",
		Password: "correct horse",
		Name:     "Sam Teacher",
		Grade:    "Grade 2",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" || user.Email != "teacher@church.org" || user.IsAdmin || !user.CreatedAt.Equal(fixedNow) {
		t.Errorf("unexpected user: %+v", user)
	}

	got, err := svc.Authenticate(ctx, "teacher@church.org", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Expected %s, got %s", user.ID, got.ID)
	}

	testCases := []struct {
		name, email, password string
	}{
		{"wrong password", "teacher@church.org", "wrong horse!"},
		{"unknown email", "nobody@church.org", "correct horse"},
		{"malformed email", "nobody", "correct horse"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Authenticate(ctx, tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	testCases := []struct {
		name    string
		in      RegisterInput
		wantErr error
	}{
		{"short password", RegisterInput{Email: "a@b.org", Password: "short", Name: "A", Grade: "Youth"}, ErrWeakPassword},
		{"bad email", RegisterInput{Email: "a-b.org", Password: "long enough", Name: "A", Grade: "Youth"}, entities.ErrInvalidEmail},
		{"unknown grade", RegisterInput{Email: "a@b.org", Password: "long enough", Name: "A", Grade: "Senior"}, entities.ErrInvalidGrade},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.in); !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestRegisterAdminEmail(t *testing.T) {
	svc, _ := newUserFixture()

	user, err := svc.Register(context.Background(), RegisterInput{
		Email: "admin@church.org", Password: "long enough", Name: "Admin", Grade: "Administration",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !user.IsAdmin {
		t.Error("Expected configured e-mail to become admin")
	}
}

func TestLinkChat(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	if _, err := svc.ByChat(ctx, 42); !errors.Is(err, ErrChatNotLinked) {
		t.Fatalf("Expected ErrChatNotLinked, got %v", err)
	}

	user, err := svc.Register(ctx, RegisterInput{
		Email: "t@church.org", Password: "long enough", Name: "T", Grade: "Nursery",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.LinkChat(ctx, "t@church.org", "bad password", 42); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.LinkChat(ctx, "t@church.org", "long enough", 42); err != nil {
		t.Fatalf("LinkChat: %v", err)
	}

	got, err := svc.ByChat(ctx, 42)
	if err != nil {
		t.Fatalf("ByChat: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Expected %s, got %s", user.ID, got.ID)
	}
}

func TestUpdateProfileAndStatus(t *testing.T) {
	users := newMemUsers(&entities.User{
		ID: "u1", Email: "u1@church.org", Name: "Old", GradeTaught: "Youth", IntendToTeach: true,
		Results: []entities.TestResult{
			{TakenAt: fixedNow.Add(-340 * day), Score: 85, Passed: true},
			{TakenAt: fixedNow.Add(-2 * day), Score: 60, Passed: false},
		},
	})
	svc := NewUserService(users, &memCredentials{users: users}, inlineTx{}, nil, fixedClock, zap.NewNop())
	ctx := context.Background()

	grade := "Grade 7"
	updated, err := svc.UpdateProfile(ctx, "u1", entities.ProfileUpdate{GradeTaught: &grade})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.GradeTaught != "Grade 7" || updated.Name != "Old" {
		t.Errorf("unexpected profile: %+v", updated)
	}

	bad := "Grade 9"
	if _, err := svc.UpdateProfile(ctx, "u1", entities.ProfileUpdate{GradeTaught: &bad}); !errors.Is(err, entities.ErrInvalidGrade) {
		t.Errorf("Expected ErrInvalidGrade, got %v", err)
	}

	dash, err := svc.Status(ctx, "u1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if dash.Attempts != 2 || dash.History[0].Score != 60 {
		t.Errorf("Expected newest result first, got %+v", dash.History)
	}
	if dash.Compliance.Status != entities.StatusExpiringSoon {
		t.Errorf("Expected expiring soon, got %s", dash.Compliance.Status)
	}
}
