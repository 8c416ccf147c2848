// Package status provides a thread-safe status tracker for the repeater
// controller daemon. It is read by HTTP handlers and by the MQTT system
// event payloads.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/repeater-controller/internal/logic"
)

// Counts aggregates the controller's activity counters. This is a local
// copy of the per-component counters to avoid importing their packages
// from status.
type Counts struct {
	IDsPlayed    int
	InfosPlayed  int
	Skipped      int // announcement cycles skipped (policy or busy channel)
	RecKept      int
	RecDeleted   int
	RecDiscarded int
	StateChanges int
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs     int64
	DebounceMs int64
	Broker     string
	HTTPAddr   string
	SerialPort string
	BusySource string
	FCCID      string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State         logic.State
	Busy          bool
	Recording     bool
	SignalLost    bool
	LastID        time.Time
	LastInfo      time.Time
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     logic.StateActive,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the activity state, channel state, and counters.
// Called from the controller loop on every tick.
func (t *Tracker) Update(state logic.State, busy, recording, signalLost bool, lastID, lastInfo time.Time, counts Counts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Busy = busy
	t.snap.Recording = recording
	t.snap.SignalLost = signalLost
	t.snap.LastID = lastID
	t.snap.LastInfo = lastInfo
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
