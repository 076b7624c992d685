package entities

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnknownFilter = errors.New("unknown roster filter")

// RosterFilter selects entries of the admin roster.
type RosterFilter string

const (
	FilterAll         RosterFilter = "all"
	FilterOutstanding RosterFilter = "outstanding" // non-compliant or expiring soon
	FilterPassed      RosterFilter = "passed"      // compliant
)

// ParseRosterFilter parses a filter name. An empty name means FilterAll.
func ParseRosterFilter(s string) (RosterFilter, error) {
	switch RosterFilter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterOutstanding:
		return FilterOutstanding, nil
	case FilterPassed:
		return FilterPassed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
}

// RosterEntry is a staff member together with their current compliance.
type RosterEntry struct {
	User       *User
	Compliance Compliance
}

// RosterStats summarizes a roster.
type RosterStats struct {
	Total       int `json:"total"`
	Valid       int `json:"valid"`
	Outstanding int `json:"outstanding"`
}

// BuildRoster evaluates every non-admin user at now.
func BuildRoster(users []*User, now time.Time) []RosterEntry {
	entries := make([]RosterEntry, 0, len(users))
	for _, u := range users {
		if u == nil || u.IsAdmin {
			continue
		}
		entries = append(entries, RosterEntry{
			User:       u,
			Compliance: u.Compliance(now),
		})
	}
	return entries
}

// FilterRoster returns the entries matching f.
func FilterRoster(entries []RosterEntry, f RosterFilter) []RosterEntry {
	if f == FilterAll || f == "" {
		return entries
	}

	out := make([]RosterEntry, 0, len(entries))
	for _, e := range entries {
		outstanding := e.Compliance.Status.Outstanding()
		if (f == FilterOutstanding && outstanding) || (f == FilterPassed && !outstanding) {
			out = append(out, e)
		}
	}
	return out
}

// SummarizeRoster counts valid and outstanding certifications.
func SummarizeRoster(entries []RosterEntry) RosterStats {
	stats := RosterStats{Total: len(entries)}
	for _, e := range entries {
		if e.Compliance.Status.Outstanding() {
			stats.Outstanding++
		} else {
			stats.Valid++
		}
	}
	return stats
}

// ReminderRecipients returns users who are not compliant and still intend
// to teach. Users who stopped teaching get no reminders.
func ReminderRecipients(entries []RosterEntry) []*User {
	var out []*User
	for _, e := range entries {
		if e.Compliance.Status.Outstanding() && e.User.IntendToTeach {
			out = append(out, e.User)
		}
	}
	return out
}
