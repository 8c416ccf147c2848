// Package controller runs the repeater's event loop. One goroutine owns
// all mutable state: it polls the busy source, pushes debounced edges
// through the activity state machine and the recording manager, and fires
// due announcements through the transmit arbiter. Every consumer sees the
// edges in the same order because there is only one dispatch path.
package controller

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sweeney/repeater-controller/internal/logic"
	"github.com/sweeney/repeater-controller/internal/mqtt"
	"github.com/sweeney/repeater-controller/internal/recording"
	"github.com/sweeney/repeater-controller/internal/schedule"
	"github.com/sweeney/repeater-controller/internal/status"
	"github.com/sweeney/repeater-controller/internal/tx"
)

// BusySource reads the raw carrier-detect state.
type BusySource interface {
	ReadBusy() (bool, error)
	Close() error
}

// Deps collects the controller's collaborators. Publisher, ConnStatus and
// Tracker are optional; the loop runs without telemetry.
type Deps struct {
	Source     BusySource
	Debouncer  *logic.Debouncer
	Machine    *logic.Machine
	Scheduler  *schedule.Scheduler
	Arbiter    *tx.Arbiter
	Recordings *recording.Manager
	Publisher  mqtt.Publisher
	ConnStatus mqtt.ConnectionStatus
	Tracker    *status.Tracker
	Logger     *log.Logger

	// StaleAfter is how long the busy source may fail before the
	// watchdog declares the signal lost and forces the channel idle.
	StaleAfter time.Duration
}

type counts struct {
	idsPlayed    int
	infosPlayed  int
	skipped      int
	stateChanges int
}

// Controller is the single-writer event loop.
type Controller struct {
	d Deps

	lastGoodRead time.Time
	signalLost   bool
	lastIDPlay   time.Time
	lastInfoPlay time.Time
	counts       counts
}

// New creates a Controller. Deps.Source, Debouncer, Machine, Scheduler,
// Arbiter, Recordings and Logger are required.
func New(d Deps) *Controller {
	return &Controller{d: d}
}

// Run drives the loop from the given tick channel until a signal arrives.
// The time source is injected so tests can drive virtual time.
func (c *Controller) Run(now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	c.lastGoodRead = now()
	c.updateTracker(now())

	for {
		select {
		case s := <-sig:
			c.shutdown(now(), s)
			return nil
		case <-tick:
			c.Step(now())
		}
	}
}

// Step processes one tick at the given instant: sample the busy line, run
// the time-based transitions, then fire any due announcements. Exported
// so tests can drive the loop with synthetic times.
func (c *Controller) Step(t time.Time) {
	busy, err := c.d.Source.ReadBusy()
	if err != nil {
		c.handleReadError(t, err)
	} else {
		if c.signalLost {
			c.signalLost = false
			c.d.Logger.Info("busy signal restored")
		}
		c.lastGoodRead = t
		if ev := c.d.Debouncer.Process(logic.Sample{Busy: busy, At: t}); ev != nil {
			c.dispatch(*ev)
		}
	}

	if sc := c.d.Machine.Tick(t); sc != nil {
		c.stateChanged(*sc)
	}

	for _, job := range c.d.Scheduler.Due(t, c.d.Machine.State()) {
		c.transmit(job)
	}

	c.updateTracker(t)
}

// dispatch delivers a debounced edge to the state machine first, then the
// recording manager, so both always observe the same edge order.
func (c *Controller) dispatch(ev logic.BusyChanged) {
	if ev.Busy {
		c.d.Logger.Debug("receiver is busy")
	} else {
		c.d.Logger.Debug("receiver is free")
	}

	if sc := c.d.Machine.HandleBusy(ev); sc != nil {
		c.stateChanged(*sc)
	}
	if d := c.d.Recordings.HandleBusy(ev); d != nil {
		c.recordingClosed(*d)
	}
}

func (c *Controller) stateChanged(sc logic.StateChanged) {
	c.counts.stateChanges++
	c.d.Logger.Info("activity state changed", "from", sc.From, "to", sc.To)
	c.publish(mqtt.Event{
		Timestamp: sc.At,
		Type:      mqtt.EventStateChange,
		State:     string(sc.To),
		Detail:    string(sc.From) + " -> " + string(sc.To),
	})
}

func (c *Controller) recordingClosed(d recording.Disposition) {
	c.publish(mqtt.Event{
		Timestamp: d.At,
		Type:      mqtt.EventRecording,
		State:     string(c.d.Machine.State()),
		Detail:    fmt.Sprintf("%s %.1fs", d.Outcome, d.Length.Seconds()),
	})
}

func (c *Controller) transmit(job schedule.Job) {
	err := c.d.Arbiter.Transmit(job)
	switch {
	case err == nil:
		c.d.Logger.Info("announcement played", "kind", job.Kind)
		switch job.Kind {
		case schedule.KindID:
			c.counts.idsPlayed++
			c.lastIDPlay = job.ScheduledAt
		case schedule.KindRptInfo:
			c.counts.infosPlayed++
			c.lastInfoPlay = job.ScheduledAt
		}
		c.publish(mqtt.Event{
			Timestamp: job.ScheduledAt,
			Type:      mqtt.EventAnnouncement,
			State:     string(c.d.Machine.State()),
			Detail:    string(job.Kind),
		})
	case tx.Rejected(err):
		// Expected during receive traffic; the next period retries.
		c.counts.skipped++
		c.d.Logger.Debug("announcement deferred", "kind", job.Kind, "reason", err)
	default:
		c.counts.skipped++
		c.d.Logger.Error("announcement failed", "kind", job.Kind, "err", err)
	}
}

func (c *Controller) handleReadError(t time.Time, err error) {
	c.d.Logger.Debug("busy read failed", "err", err)
	if c.signalLost || t.Sub(c.lastGoodRead) < c.d.StaleAfter {
		// Hold the last known value until the stale threshold.
		return
	}

	c.signalLost = true
	c.d.Logger.Warn("busy signal lost, forcing channel idle", "stale_for", t.Sub(c.lastGoodRead))
	if d := c.d.Recordings.CloseStale(t); d != nil {
		c.recordingClosed(*d)
	}
	if ev := c.d.Debouncer.Force(false, t); ev != nil {
		c.dispatch(*ev)
	}
	c.publishSystem(mqtt.SystemEvent{Timestamp: t, Event: "SIGNAL_LOST"})
}

func (c *Controller) shutdown(t time.Time, s os.Signal) {
	c.d.Logger.Info("received signal, shutting down", "signal", s)

	signalName := "UNKNOWN"
	if s == syscall.SIGINT {
		signalName = "SIGINT"
	} else if s == syscall.SIGTERM {
		signalName = "SIGTERM"
	}

	event := mqtt.SystemEvent{
		Timestamp: t,
		Event:     "SHUTDOWN",
		Reason:    signalName,
		Retained:  true,
	}
	if c.d.Tracker != nil {
		c.updateTracker(t)
		event.RawPayload = status.FormatStatusEvent(c.d.Tracker.Snapshot(), "SHUTDOWN", signalName)
	}
	c.publishSystem(event)
}

func (c *Controller) publish(ev mqtt.Event) {
	if c.d.Publisher == nil {
		return
	}
	if err := c.d.Publisher.Publish(ev); err != nil {
		c.d.Logger.Error("publish event", "err", err)
	}
}

func (c *Controller) publishSystem(ev mqtt.SystemEvent) {
	if c.d.Publisher == nil {
		return
	}
	if err := c.d.Publisher.PublishSystem(ev); err != nil {
		c.d.Logger.Error("publish system event", "err", err)
	}
}

func (c *Controller) updateTracker(t time.Time) {
	if c.d.Tracker == nil {
		return
	}
	rc := c.d.Recordings.Counts()
	c.d.Tracker.Update(
		c.d.Machine.State(),
		c.d.Debouncer.IsBusy(),
		c.d.Recordings.Recording(),
		c.signalLost,
		c.lastIDPlay,
		c.lastInfoPlay,
		status.Counts{
			IDsPlayed:    c.counts.idsPlayed,
			InfosPlayed:  c.counts.infosPlayed,
			Skipped:      c.counts.skipped,
			RecKept:      rc.Kept,
			RecDeleted:   rc.Deleted,
			RecDiscarded: rc.Discarded,
			StateChanges: c.counts.stateChanges,
		},
	)
	if c.d.ConnStatus != nil {
		c.d.Tracker.SetMQTTConnected(c.d.ConnStatus.IsConnected())
	}
}
