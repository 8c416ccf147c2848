package logic

import "time"

// Machine owns the Active/Sleeping/Waking lifecycle. It is driven by two
// inputs: debounced busy edges (HandleBusy) and the passage of time (Tick).
// Both may emit a StateChanged event.
//
// Deadlines are recomputed from tracked instants on every Tick rather than
// armed as one-shot timers, so a deadline superseded by a busy edge can
// never fire stale.
type Machine struct {
	state      State
	busy       bool
	sleepAfter time.Duration
	wakeAfter  time.Duration

	// idleSince is the instant the channel last went idle.
	// Only meaningful while busy is false.
	idleSince time.Time

	// wakeStart is the instant the busy edge arrived while sleeping.
	// Only meaningful in StateWaking.
	wakeStart time.Time
}

// NewMachine creates a Machine in StateActive with the idle clock starting
// at the given instant, so an untouched repeater still reaches
// StateSleeping after sleepAfter.
func NewMachine(sleepAfter, wakeAfter time.Duration, start time.Time) *Machine {
	return &Machine{
		state:      StateActive,
		sleepAfter: sleepAfter,
		wakeAfter:  wakeAfter,
		idleSince:  start,
	}
}

// State returns the current activity state.
func (m *Machine) State() State {
	return m.state
}

// HandleBusy consumes a debounced busy edge. A duplicate edge (same value
// as the current one) is a no-op, so redelivery never double-transitions.
func (m *Machine) HandleBusy(ev BusyChanged) *StateChanged {
	if ev.Busy == m.busy {
		return nil
	}
	m.busy = ev.Busy

	if ev.Busy {
		// Any busy edge invalidates the idle clock; a queued sleep
		// deadline can no longer fire because Tick only checks it
		// while the channel is idle.
		if m.state == StateSleeping {
			m.wakeStart = ev.At
			return m.transition(StateWaking, ev.At)
		}
		return nil
	}

	m.idleSince = ev.At
	if m.state == StateWaking {
		// The key-up ended before the wake duration elapsed: treat it
		// as transient noise and drop back to sleeping. No active
		// period is recorded.
		return m.transition(StateSleeping, ev.At)
	}
	return nil
}

// Tick evaluates the time-based transitions at the given instant.
func (m *Machine) Tick(now time.Time) *StateChanged {
	switch m.state {
	case StateActive:
		if !m.busy && now.Sub(m.idleSince) >= m.sleepAfter {
			return m.transition(StateSleeping, now)
		}
	case StateWaking:
		if m.busy && now.Sub(m.wakeStart) >= m.wakeAfter {
			return m.transition(StateActive, now)
		}
	}
	return nil
}

func (m *Machine) transition(to State, at time.Time) *StateChanged {
	ev := &StateChanged{From: m.state, To: to, At: at}
	m.state = to
	return ev
}
