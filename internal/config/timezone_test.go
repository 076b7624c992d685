package config

import (
	"testing"
	"time"
)

var fixedDate = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestParseLocation(t *testing.T) {
	testCases := []struct {
		in         string
		wantOffset int
		wantErr    bool
	}{
		{"", 0, false},
		{"UTC", 0, false},
		{"Africa/Johannesburg", 2 * 3600, false},
		{"UTC+2", 2 * 3600, false},
		{"+05:30", 5*3600 + 30*60, false},
		{"UTC-3:30", -(3*3600 + 30*60), false},
		{"UTC+15", 0, true},
		{"+2:75", 0, true},
		{"Mars/Olympus", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			loc, err := ParseLocation(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLocation(%q): %v", tc.in, err)
			}
			// Johannesburg has no DST, so a fixed date is enough.
			_, offset := fixedDate.In(loc).Zone()
			if offset != tc.wantOffset {
				t.Errorf("Expected offset %d, got %d", tc.wantOffset, offset)
			}
		})
	}
}
