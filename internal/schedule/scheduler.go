// Package schedule decides when station announcements are due.
// It owns the period bookkeeping only; transmitting is the arbiter's job.
package schedule

import (
	"time"

	"github.com/sweeney/repeater-controller/internal/logic"
)

// Kind identifies an announcement.
type Kind string

const (
	// KindID is the periodic station-identification announcement.
	KindID Kind = "CW_ID"

	// KindRptInfo is the periodic repeater-information announcement.
	KindRptInfo Kind = "RPT_INFO"
)

// Job is one announcement to be transmitted. It is consumed exactly once;
// a job rejected by the arbiter is dropped, not replayed.
type Job struct {
	Kind        Kind
	AudioPath   string
	ScheduledAt time.Time
}

// Config holds the scheduler parameters.
type Config struct {
	IDPeriod      time.Duration
	RptInfoPeriod time.Duration

	// Whether each announcement still fires while the repeater sleeps.
	IDWhenAsleep      bool
	RptInfoWhenAsleep bool

	IDClip      string
	RptInfoClip string
}

// Scheduler tracks when each announcement last fired. Zero last-fire
// instants mean both announcements are due immediately, which gives the
// boot-time roster: ID and info play as soon as the channel is free.
type Scheduler struct {
	cfg      Config
	lastID   time.Time
	lastInfo time.Time
}

// New creates a Scheduler with both announcements immediately due.
func New(cfg Config) *Scheduler {
	return &Scheduler{cfg: cfg}
}

// Due returns the announcements due at the given instant, ID first when
// both periods expire together. Evaluating a due announcement always
// resets its period, whether it fires, is suppressed by sleep policy, or
// is later rejected by the arbiter. Missed cycles are dropped, never
// caught up, so the next attempt is exactly one period away.
func (s *Scheduler) Due(now time.Time, state logic.State) []Job {
	var jobs []Job
	if j := s.check(now, state, &s.lastID, s.cfg.IDPeriod, s.cfg.IDWhenAsleep, KindID, s.cfg.IDClip); j != nil {
		jobs = append(jobs, *j)
	}
	if j := s.check(now, state, &s.lastInfo, s.cfg.RptInfoPeriod, s.cfg.RptInfoWhenAsleep, KindRptInfo, s.cfg.RptInfoClip); j != nil {
		jobs = append(jobs, *j)
	}
	return jobs
}

// LastFired returns the instants each announcement last came due.
func (s *Scheduler) LastFired() (id, info time.Time) {
	return s.lastID, s.lastInfo
}

func (s *Scheduler) check(now time.Time, state logic.State, last *time.Time, period time.Duration, whenAsleep bool, kind Kind, clip string) *Job {
	if !last.IsZero() && now.Sub(*last) < period {
		return nil
	}
	*last = now

	if state == logic.StateSleeping && !whenAsleep {
		return nil
	}
	return &Job{Kind: kind, AudioPath: clip, ScheduledAt: now}
}
