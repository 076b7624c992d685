package entities

import (
	"testing"
	"time"
)

func passedAt(t time.Time) TestResult {
	return TestResult{TakenAt: t, Score: 90, Passed: true}
}

func failedAt(t time.Time) TestResult {
	return TestResult{TakenAt: t, Score: 50, Passed: false}
}

func TestEvaluateCompliance(t *testing.T) {
	day := 24 * time.Hour

	testCases := []struct {
		name       string
		history    []TestResult
		wantStatus ComplianceStatus
		wantExpiry *time.Time
	}{
		{
			name:       "no results",
			history:    nil,
			wantStatus: StatusNonCompliant,
		},
		{
			name:       "only failed results",
			history:    []TestResult{failedAt(fixedNow.Add(-10 * day))},
			wantStatus: StatusNonCompliant,
		},
		{
			name:       "passed 370 days ago",
			history:    []TestResult{passedAt(fixedNow.Add(-370 * day))},
			wantStatus: StatusNonCompliant,
			wantExpiry: ptr(fixedNow.Add(-5 * day)),
		},
		{
			name:       "passed 340 days ago",
			history:    []TestResult{passedAt(fixedNow.Add(-340 * day))},
			wantStatus: StatusExpiringSoon,
			wantExpiry: ptr(fixedNow.Add(25 * day)),
		},
		{
			name:       "passed 100 days ago",
			history:    []TestResult{passedAt(fixedNow.Add(-100 * day))},
			wantStatus: StatusCompliant,
			wantExpiry: ptr(fixedNow.Add(265 * day)),
		},
		{
			name: "latest pass wins over order",
			history: []TestResult{
				passedAt(fixedNow.Add(-10 * day)),
				passedAt(fixedNow.Add(-400 * day)),
				failedAt(fixedNow.Add(-1 * day)),
			},
			wantStatus: StatusCompliant,
			wantExpiry: ptr(fixedNow.Add(355 * day)),
		},
		{
			name:       "expiring exactly 30 days out",
			history:    []TestResult{passedAt(fixedNow.Add(-335 * day))},
			wantStatus: StatusExpiringSoon,
			wantExpiry: ptr(fixedNow.Add(30 * day)),
		},
		{
			name:       "expires right now",
			history:    []TestResult{passedAt(fixedNow.AddDate(-1, 0, 0))},
			wantStatus: StatusExpiringSoon,
			wantExpiry: ptr(fixedNow),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := EvaluateCompliance(tc.history, fixedNow)
			if c.Status != tc.wantStatus {
				t.Errorf("Expected status %s, got %s", tc.wantStatus, c.Status)
			}
			switch {
			case tc.wantExpiry == nil && c.ExpiresAt != nil:
				t.Errorf("Expected no expiry, got %v", *c.ExpiresAt)
			case tc.wantExpiry != nil && c.ExpiresAt == nil:
				t.Errorf("Expected expiry %v, got none", *tc.wantExpiry)
			case tc.wantExpiry != nil && !c.ExpiresAt.Equal(*tc.wantExpiry):
				t.Errorf("Expected expiry %v, got %v", *tc.wantExpiry, *c.ExpiresAt)
			}
		})
	}
}

func TestEvaluateComplianceIsDeterministic(t *testing.T) {
	history := []TestResult{passedAt(fixedNow.Add(-340 * 24 * time.Hour))}
	a := EvaluateCompliance(history, fixedNow)
	b := EvaluateCompliance(history, fixedNow)
	if a.Status != b.Status || !a.ExpiresAt.Equal(*b.ExpiresAt) {
		t.Errorf("Expected identical evaluations, got %+v and %+v", a, b)
	}
}

func TestComplianceMonotonicInTime(t *testing.T) {
	passed := fixedNow.Add(-200 * 24 * time.Hour)
	history := []TestResult{passedAt(passed)}
	expiry := CertificationExpiry(passed)

	prev := StatusCompliant
	for now := fixedNow; !now.After(expiry.Add(48 * time.Hour)); now = now.Add(12 * time.Hour) {
		status := EvaluateCompliance(history, now).Status
		if status.Severity() < prev.Severity() {
			t.Fatalf("status improved from %s to %s at %v", prev, status, now)
		}
		prev = status
	}
	if prev != StatusNonCompliant {
		t.Errorf("Expected non-compliant after expiry, got %s", prev)
	}
}

func TestCertificationExpiry(t *testing.T) {
	testCases := []struct {
		name   string
		passed time.Time
		want   time.Time
	}{
		{
			name:   "regular date",
			passed: time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC),
			want:   time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC),
		},
		{
			name:   "leap day clamps to February 28",
			passed: time.Date(2024, time.February, 29, 8, 0, 0, 0, time.UTC),
			want:   time.Date(2025, time.February, 28, 8, 0, 0, 0, time.UTC),
		},
		{
			name:   "end of year",
			passed: time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC),
			want:   time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CertificationExpiry(tc.passed); !got.Equal(tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestComplianceDaysLeft(t *testing.T) {
	c := EvaluateCompliance([]TestResult{passedAt(fixedNow.Add(-340 * 24 * time.Hour))}, fixedNow)
	if got := c.DaysLeft(fixedNow); got != 25 {
		t.Errorf("Expected 25 days left, got %d", got)
	}
	if got := (Compliance{Status: StatusNonCompliant}).DaysLeft(fixedNow); got != 0 {
		t.Errorf("Expected 0 days without expiry, got %d", got)
	}
}

func ptr[T any](v T) *T { return &v }
