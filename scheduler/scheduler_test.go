package scheduler

import (
	"testing"
	"time"
)

func TestNew_ValidTimezone(t *testing.T) {
	s, err := New("America/New_York")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()
	if s.location.String() != "America/New_York" {
		t.Errorf("expected America/New_York, got %s", s.location.String())
	}
}

func TestNew_InvalidTimezone(t *testing.T) {
	_, err := New("Invalid/Zone")
	if err == nil {
		t.Fatal("expected error for invalid timezone")
	}
}

func TestScheduleSweep_ValidInterval(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	err = s.ScheduleSweep(time.Hour, func() int { return 0 })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Jobs(); got != 1 {
		t.Errorf("expected 1 job, got %d", got)
	}
}

func TestScheduleSweep_InvalidInterval(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	if err := s.ScheduleSweep(0, func() int { return 0 }); err == nil {
		t.Error("expected error for zero interval")
	}
	if err := s.ScheduleSweep(-time.Minute, func() int { return 0 }); err == nil {
		t.Error("expected error for negative interval")
	}
	if got := s.Jobs(); got != 0 {
		t.Errorf("expected 0 jobs after rejected intervals, got %d", got)
	}
}

func TestScheduleSweep_Replaces(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	if err := s.ScheduleSweep(time.Hour, func() int { return 0 }); err != nil {
		t.Fatal(err)
	}
	firstEntry := s.sweepID

	if err := s.ScheduleSweep(30*time.Minute, func() int { return 0 }); err != nil {
		t.Fatal(err)
	}

	if s.sweepID == firstEntry {
		t.Error("expected entry ID to change after reschedule")
	}
	if got := s.Jobs(); got != 1 {
		t.Errorf("expected 1 job after reschedule, got %d", got)
	}
}

func TestSchedulePrefetch_ValidTime(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	err = s.SchedulePrefetch("14:30", func() {})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Jobs(); got != 1 {
		t.Errorf("expected 1 job, got %d", got)
	}
}

func TestSchedulePrefetch_InvalidTime(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	for _, input := range []string{"25:00", "12:60", "8:30", "noon", ""} {
		if err := s.SchedulePrefetch(input, func() {}); err == nil {
			t.Errorf("SchedulePrefetch(%q) expected error", input)
		}
	}
}

func TestSchedulePrefetch_Replaces(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	if err := s.SchedulePrefetch("08:00", func() {}); err != nil {
		t.Fatal(err)
	}
	firstEntry := s.prefetchID

	if err := s.SchedulePrefetch("10:00", func() {}); err != nil {
		t.Fatal(err)
	}

	if s.prefetchID == firstEntry {
		t.Error("expected entry ID to change after reschedule")
	}
	if got := s.Jobs(); got != 1 {
		t.Errorf("expected 1 job after reschedule, got %d", got)
	}
}

func TestJobs_CountsBothKinds(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	if err := s.ScheduleSweep(time.Hour, func() int { return 0 }); err != nil {
		t.Fatal(err)
	}
	if err := s.SchedulePrefetch("06:00", func() {}); err != nil {
		t.Fatal(err)
	}
	if got := s.Jobs(); got != 2 {
		t.Errorf("expected 2 jobs, got %d", got)
	}
}

func TestStartStop(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatal(err)
	}

	s.Start()
	s.Stop()
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		input  string
		hour   int
		minute int
		valid  bool
	}{
		{"00:00", 0, 0, true},
		{"09:30", 9, 30, true},
		{"23:59", 23, 59, true},
		{"24:00", 0, 0, false},
		{"12:60", 0, 0, false},
		{"1:00", 0, 0, false},
		{"abc", 0, 0, false},
	}

	for _, tt := range tests {
		h, m, err := parseTime(tt.input)
		if tt.valid {
			if err != nil {
				t.Errorf("parseTime(%q) unexpected error: %v", tt.input, err)
			}
			if h != tt.hour || m != tt.minute {
				t.Errorf("parseTime(%q) = %d:%d, want %d:%d", tt.input, h, m, tt.hour, tt.minute)
			}
		} else {
			if err == nil {
				t.Errorf("parseTime(%q) expected error", tt.input)
			}
		}
	}
}
