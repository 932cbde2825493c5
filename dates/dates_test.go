package dates

import (
	"testing"
	"time"
)

func TestParsePublished(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
		ok   bool
	}{
		{
			name: "feed native GMT",
			in:   "Mon, 06 Jan 2025 14:30:00 GMT",
			want: time.Date(2025, 1, 6, 14, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "rfc3339 with zulu",
			in:   "2025-01-06T14:30:00Z",
			want: time.Date(2025, 1, 6, 14, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "rfc3339 with offset",
			in:   "2025-01-06T14:30:00+02:00",
			want: time.Date(2025, 1, 6, 12, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "iso without zone",
			in:   "2025-01-06T14:30:00",
			want: time.Date(2025, 1, 6, 14, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "date only",
			in:   "2025-01-06",
			want: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "garbage",
			in:   "not a date at all",
			ok:   false,
		},
		{
			name: "empty",
			in:   "",
			ok:   false,
		},
		{
			name: "partial feed format",
			in:   "Mon, 06 Jan 2025",
			ok:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParsePublished(tc.in)
			if ok != tc.ok {
				t.Fatalf("ParsePublished(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			}
			if ok && !got.Equal(tc.want) {
				t.Errorf("ParsePublished(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParsePublished_UnknownZoneKeepsDate(t *testing.T) {
	// Zone abbreviations outside the host's database still parse; only
	// the offset may differ. The calendar date is what filtering uses.
	got, ok := ParsePublished("Wed, 15 Jan 2025 09:00:00 EST")
	if !ok {
		t.Fatal("expected EST date to parse")
	}
	if DayKey(got) != "2025-01-15" {
		t.Errorf("day = %s, want 2025-01-15", DayKey(got))
	}
}

func TestParseInput(t *testing.T) {
	fallback := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"empty uses fallback", "", fallback},
		{"date only", "2025-01-15", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"date with time", "2025-01-15T10:30:00", time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"unparseable uses fallback", "definitely not a date", fallback},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseInput(tc.in, fallback)
			if !got.Equal(tc.want) {
				t.Errorf("ParseInput(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestInRange(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"middle of window", time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC), true},
		{"first day inclusive", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"last day inclusive", time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC), true},
		{"day before", time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), false},
		{"day after", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := InRange(tc.t, from, to); got != tc.want {
				t.Errorf("InRange(%v) = %v, want %v", tc.t, got, tc.want)
			}
		})
	}
}

func TestInRange_IgnoresTimeOfDay(t *testing.T) {
	// A window bound carrying a late time of day must not exclude
	// earlier entries from the same calendar date.
	from := time.Date(2025, 1, 10, 23, 59, 0, 0, time.UTC)
	to := time.Date(2025, 1, 10, 23, 59, 59, 0, time.UTC)
	entry := time.Date(2025, 1, 10, 0, 15, 0, 0, time.UTC)

	if !InRange(entry, from, to) {
		t.Error("expected same-day entry to be in range regardless of time")
	}
}

func TestDayKey(t *testing.T) {
	got := DayKey(time.Date(2025, 2, 3, 18, 45, 0, 0, time.UTC))
	if got != "2025-02-03" {
		t.Errorf("DayKey = %q, want %q", got, "2025-02-03")
	}
}
