// Package recording owns the session bookkeeping for received
// transmissions: one recording per busy interval, short key-ups deleted.
// The capture I/O itself is delegated to the audio collaborator.
package recording

import (
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"

	"github.com/sweeney/repeater-controller/internal/audio"
	"github.com/sweeney/repeater-controller/internal/logic"
)

const filenamePattern = "%Y-%m-%d_%H-%M-%S.wav"

// Session is one recording bound to a busy interval.
type Session struct {
	Start   time.Time
	Path    string
	failed  bool
	capture audio.Capture
}

// Counts tracks session dispositions since startup.
type Counts struct {
	Kept      int
	Deleted   int
	Discarded int
}

// Outcome of a closed recording session.
type Outcome string

const (
	OutcomeKept      Outcome = "kept"
	OutcomeDeleted   Outcome = "deleted"
	OutcomeDiscarded Outcome = "discarded"
)

// Disposition describes how a closed session was resolved. The controller
// forwards it to telemetry.
type Disposition struct {
	Path    string
	Length  time.Duration
	At      time.Time
	Outcome Outcome
}

// Manager opens a session on each busy edge, closes it on the idle edge,
// and deletes recordings shorter than the configured minimum.
type Manager struct {
	recorder  audio.Recorder
	dir       string
	minLength time.Duration
	logger    *log.Logger

	open   *Session
	counts Counts
}

// NewManager creates a Manager writing into dir.
func NewManager(recorder audio.Recorder, dir string, minLength time.Duration, logger *log.Logger) *Manager {
	return &Manager{
		recorder:  recorder,
		dir:       dir,
		minLength: minLength,
		logger:    logger,
	}
}

// HandleBusy consumes a debounced busy edge: a busy edge opens a session
// if none is open, an idle edge closes and evaluates the open one. The
// returned disposition is non-nil when a session was closed.
func (m *Manager) HandleBusy(ev logic.BusyChanged) *Disposition {
	if ev.Busy {
		m.openSession(ev.At)
		return nil
	}
	return m.closeSession(ev.At)
}

// Recording reports whether a session is currently open.
func (m *Manager) Recording() bool {
	return m.open != nil
}

// Counts returns the session dispositions since startup.
func (m *Manager) Counts() Counts {
	return m.counts
}

// CloseStale force-closes any open session. The signal-loss watchdog calls
// this when the busy source has gone quiet, so a recording is never left
// open indefinitely. The returned disposition is non-nil when a session
// was closed.
func (m *Manager) CloseStale(now time.Time) *Disposition {
	if m.open == nil {
		return nil
	}
	m.logger.Warn("closing stale recording session", "path", m.open.Path, "open_for", now.Sub(m.open.Start))
	return m.closeSession(now)
}

func (m *Manager) openSession(at time.Time) {
	if m.open != nil {
		return
	}

	name, err := strftime.Format(filenamePattern, at)
	if err != nil {
		// The pattern is a constant; this cannot happen in practice.
		m.logger.Error("format recording filename", "err", err)
		return
	}
	path := filepath.Join(m.dir, name)

	s := &Session{Start: at, Path: path}
	capture, err := m.recorder.Start(path)
	if err != nil {
		// Keep the session open for bookkeeping so the idle edge
		// closes it normally; nothing was written so there is
		// nothing to delete.
		m.logger.Error("start recording", "path", path, "err", err)
		s.failed = true
	} else {
		s.capture = capture
		m.logger.Debug("recording to file", "path", path)
	}
	m.open = s
}

func (m *Manager) closeSession(at time.Time) *Disposition {
	if m.open == nil {
		return nil
	}
	s := m.open
	m.open = nil

	if s.capture != nil {
		if err := s.capture.Stop(); err != nil {
			m.logger.Error("stop recording", "path", s.Path, "err", err)
			s.failed = true
		}
	}

	length := at.Sub(s.Start)
	d := &Disposition{Path: s.Path, Length: length, At: at}

	switch {
	case s.failed:
		// The recorder never produced a usable file; discard.
		if s.capture != nil {
			if err := m.recorder.Delete(s.Path); err != nil {
				m.logger.Error("delete recording", "path", s.Path, "err", err)
			}
		}
		d.Outcome = OutcomeDiscarded
		m.counts.Discarded++
	case length < m.minLength:
		m.logger.Debug("deleting short recording", "path", s.Path, "length", length, "min", m.minLength)
		if err := m.recorder.Delete(s.Path); err != nil {
			m.logger.Error("delete recording", "path", s.Path, "err", err)
		}
		d.Outcome = OutcomeDeleted
		m.counts.Deleted++
	default:
		m.logger.Info("recorded", "path", s.Path, "length", length)
		d.Outcome = OutcomeKept
		m.counts.Kept++
	}
	return d
}
