package entities

import (
	"errors"
	"testing"
	"time"
)

func rosterUsers() []*User {
	day := 24 * time.Hour
	return []*User{
		{ID: "admin", Name: "Admin", IsAdmin: true, IntendToTeach: true},
		{ID: "valid", Name: "Valid", IntendToTeach: true,
			Results: []TestResult{passedAt(fixedNow.Add(-30 * day))}},
		{ID: "expiring", Name: "Expiring", IntendToTeach: true,
			Results: []TestResult{passedAt(fixedNow.Add(-350 * day))}},
		{ID: "expired", Name: "Expired", IntendToTeach: true,
			Results: []TestResult{passedAt(fixedNow.Add(-500 * day))}},
		{ID: "never", Name: "Never", IntendToTeach: false},
	}
}

func entryIDs(entries []RosterEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.User.ID)
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuildRosterExcludesAdmins(t *testing.T) {
	entries := BuildRoster(rosterUsers(), fixedNow)
	want := []string{"valid", "expiring", "expired", "never"}
	if got := entryIDs(entries); !equalIDs(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
}

func TestFilterRoster(t *testing.T) {
	entries := BuildRoster(rosterUsers(), fixedNow)

	testCases := []struct {
		filter RosterFilter
		want   []string
	}{
		{FilterAll, []string{"valid", "expiring", "expired", "never"}},
		{FilterOutstanding, []string{"expiring", "expired", "never"}},
		{FilterPassed, []string{"valid"}},
	}

	for _, tc := range testCases {
		t.Run(string(tc.filter), func(t *testing.T) {
			if got := entryIDs(FilterRoster(entries, tc.filter)); !equalIDs(got, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestSummarizeRoster(t *testing.T) {
	stats := SummarizeRoster(BuildRoster(rosterUsers(), fixedNow))
	want := RosterStats{Total: 4, Valid: 1, Outstanding: 3}
	if stats != want {
		t.Errorf("Expected %+v, got %+v", want, stats)
	}
}

func TestReminderRecipients(t *testing.T) {
	day := 24 * time.Hour
	users := []*User{
		{ID: "a", IntendToTeach: true},
		{ID: "b", IntendToTeach: true, Results: []TestResult{passedAt(fixedNow.Add(-400 * day))}},
		{ID: "c", IntendToTeach: false},
		{ID: "d", IntendToTeach: true, Results: []TestResult{passedAt(fixedNow.Add(-10 * day))}},
	}

	got := ReminderRecipients(BuildRoster(users, fixedNow))
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("Expected recipients [a b], got %d users", len(got))
	}
}

func TestParseRosterFilter(t *testing.T) {
	testCases := []struct {
		in      string
		want    RosterFilter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"all", FilterAll, false},
		{"outstanding", FilterOutstanding, false},
		{"passed", FilterPassed, false},
		{"expired", "", true},
	}

	for _, tc := range testCases {
		got, err := ParseRosterFilter(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrUnknownFilter) {
				t.Errorf("%q: expected ErrUnknownFilter, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("%q: expected %s, got %s (%v)", tc.in, tc.want, got, err)
		}
	}
}
