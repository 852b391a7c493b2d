// Package expiry runs the knowledge store's expiry sweep on a cron schedule.
package expiry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/starford/obweb/internal/knowledge"
	"github.com/starford/obweb/internal/oid"
)

// parser accepts standard 5-field expressions and descriptors such as
// "@every 5m" or "@hourly".
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule parses a sweep schedule.
func ParseSchedule(spec string) (cron.Schedule, error) {
	s, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("expiry: schedule %q: %w", spec, err)
	}
	return s, nil
}

// Sweeper evicts expired entries from whichever store ref currently holds.
type Sweeper struct {
	sched  cron.Schedule
	ref    *knowledge.Ref
	now    func() time.Time
	logger *slog.Logger
}

// NewSweeper parses spec and returns a sweeper over ref.
func NewSweeper(spec string, ref *knowledge.Ref, logger *slog.Logger) (*Sweeper, error) {
	sched, err := ParseSchedule(spec)
	if err != nil {
		return nil, err
	}
	return &Sweeper{sched: sched, ref: ref, now: time.Now, logger: logger}, nil
}

// SweepOnce runs one sweep at the current time.
func (s *Sweeper) SweepOnce() []oid.OID {
	evicted := s.ref.Load().Sweep(s.now())
	if len(evicted) > 0 {
		s.logger.Info("expiry: swept", slog.Int("evicted", len(evicted)))
	} else {
		s.logger.Debug("expiry: nothing to sweep")
	}
	return evicted
}

// Run sweeps at every scheduled time until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info("expiry: started")
	for {
		next := s.sched.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("expiry: stopped")
			return nil
		case <-timer.C:
			s.SweepOnce()
		}
	}
}
