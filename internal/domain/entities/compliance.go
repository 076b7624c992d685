package entities

import "time"

// ComplianceStatus is the derived certification standing of a user.
type ComplianceStatus string

const (
	StatusCompliant    ComplianceStatus = "compliant"
	StatusExpiringSoon ComplianceStatus = "expiring_soon"
	StatusNonCompliant ComplianceStatus = "non_compliant"
)

// ExpiryWarningWindow is how long before expiry a certification counts as expiring soon.
const ExpiryWarningWindow = 30 * 24 * time.Hour

// Severity orders statuses: a larger value is less compliant.
func (s ComplianceStatus) Severity() int {
	switch s {
	case StatusCompliant:
		return 0
	case StatusExpiringSoon:
		return 1
	default:
		return 2
	}
}

// Outstanding reports whether the status needs the user's attention.
func (s ComplianceStatus) Outstanding() bool {
	return s != StatusCompliant
}

// Compliance is a point-in-time evaluation of a user's test history.
type Compliance struct {
	Status      ComplianceStatus `json:"status"`
	LastSuccess *time.Time       `json:"lastSuccess,omitempty"`
	ExpiresAt   *time.Time       `json:"expiresAt,omitempty"`
}

// EvaluateCompliance derives the certification status from history at now.
// It is a pure function; nothing about the result is stored.
func EvaluateCompliance(history []TestResult, now time.Time) Compliance {
	last, ok := LastSuccess(history)
	if !ok {
		return Compliance{Status: StatusNonCompliant}
	}

	expires := CertificationExpiry(last)
	c := Compliance{
		LastSuccess: &last,
		ExpiresAt:   &expires,
	}

	switch {
	case now.After(expires):
		c.Status = StatusNonCompliant
	case expires.Sub(now) <= ExpiryWarningWindow:
		c.Status = StatusExpiringSoon
	default:
		c.Status = StatusCompliant
	}
	return c
}

// DaysLeft returns whole days until expiry, negative once expired.
// Without an expiry it returns 0.
func (c Compliance) DaysLeft(now time.Time) int {
	if c.ExpiresAt == nil {
		return 0
	}
	return int(c.ExpiresAt.Sub(now).Hours() / 24)
}

// CertificationExpiry returns the same month and day one year after passed.
// February 29 maps to February 28 of the following year.
func CertificationExpiry(passed time.Time) time.Time {
	y, m, d := passed.Date()
	h, mi, sec := passed.Clock()

	next := y + 1
	if last := daysIn(m, next, passed.Location()); d > last {
		d = last
	}
	return time.Date(next, m, d, h, mi, sec, passed.Nanosecond(), passed.Location())
}

func daysIn(m time.Month, year int, loc *time.Location) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, loc).Day()
}
