package scheduler

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the recurring maintenance jobs: cache sweeps and
// the daily topic prefetch.
type Scheduler struct {
	cron       *cron.Cron
	mu         sync.Mutex
	sweepID    cron.EntryID
	prefetchID cron.EntryID
	location   *time.Location
}

// New creates a Scheduler in the given timezone.
func New(timezone string) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", timezone, err)
	}

	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:     c,
		location: loc,
	}, nil
}

// ScheduleSweep runs sweep at the given interval and logs how many
// cache entries each run removed. A previous sweep schedule is replaced.
func (s *Scheduler) ScheduleSweep(every time.Duration, sweep func() int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if every <= 0 {
		return fmt.Errorf("invalid sweep interval %v", every)
	}

	if s.sweepID != 0 {
		s.cron.Remove(s.sweepID)
	}

	expr := fmt.Sprintf("@every %s", every)
	entryID, err := s.cron.AddFunc(expr, func() {
		if removed := sweep(); removed > 0 {
			slog.Info("cache sweep removed entries", "count", removed)
		}
	})
	if err != nil {
		return fmt.Errorf("adding sweep entry: %w", err)
	}

	s.sweepID = entryID
	slog.Info("cache sweep scheduled", "every", every.String())
	return nil
}

// SchedulePrefetch sets up the daily prefetch at the given time (HH:MM
// format). If a previous prefetch schedule exists, it is replaced.
func (s *Scheduler) SchedulePrefetch(at string, run func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hour, minute, err := parseTime(at)
	if err != nil {
		return err
	}

	if s.prefetchID != 0 {
		s.cron.Remove(s.prefetchID)
	}

	expr := fmt.Sprintf("%d %d * * *", minute, hour)
	entryID, err := s.cron.AddFunc(expr, run)
	if err != nil {
		return fmt.Errorf("adding prefetch entry: %w", err)
	}

	s.prefetchID = entryID
	slog.Info("prefetch scheduled", "time", at, "cron", expr, "timezone", s.location.String())
	return nil
}

// Jobs returns how many jobs are currently scheduled.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start begins the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// parseTime extracts hour and minute from HH:MM format.
func parseTime(t string) (int, int, error) {
	if len(t) != 5 || t[2] != ':' {
		return 0, 0, fmt.Errorf("invalid time format %q: must be HH:MM", t)
	}

	hour := (int(t[0]-'0') * 10) + int(t[1]-'0')
	minute := (int(t[3]-'0') * 10) + int(t[4]-'0')

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q: hour 0-23, minute 0-59", t)
	}

	return hour, minute, nil
}
