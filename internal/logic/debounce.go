package logic

import "time"

// Debouncer turns raw carrier-detect samples into clean busy/idle edges.
// A transition is only reported after the raw value has held at the new
// value for the settle interval; single-sample flicker from a marginal
// squelch produces no events.
type Debouncer struct {
	settle time.Duration
	stable bool
	primed bool

	pending      bool
	pendingSet   bool
	pendingSince time.Time
}

// NewDebouncer creates a Debouncer with the given settle interval.
func NewDebouncer(settle time.Duration) *Debouncer {
	return &Debouncer{settle: settle}
}

// Process takes a raw sample and returns a BusyChanged edge if the value
// has settled at a new level, nil otherwise.
//
// The first sample is trusted immediately: the interface board holds the
// line at a defined level, so there is nothing to debounce at startup.
func (d *Debouncer) Process(s Sample) *BusyChanged {
	if !d.primed {
		d.primed = true
		d.stable = s.Busy
		return nil
	}

	if s.Busy == d.stable {
		// Back at the stable level, discard any pending transition.
		d.pendingSet = false
		return nil
	}

	if !d.pendingSet || d.pending != s.Busy {
		d.pending = s.Busy
		d.pendingSet = true
		d.pendingSince = s.At
		return nil
	}

	if s.At.Sub(d.pendingSince) < d.settle {
		return nil
	}

	d.stable = s.Busy
	d.pendingSet = false
	return &BusyChanged{Busy: s.Busy, At: s.At}
}

// IsBusy returns the current debounced value.
func (d *Debouncer) IsBusy() bool {
	return d.stable
}

// Force overrides the debounced value, bypassing the settle interval.
// Returns the resulting edge, or nil if the value already matched.
// Used by the signal-loss watchdog to push the line to a known level
// when the source has stopped producing readings.
func (d *Debouncer) Force(busy bool, at time.Time) *BusyChanged {
	d.primed = true
	d.pendingSet = false
	if d.stable == busy {
		return nil
	}
	d.stable = busy
	return &BusyChanged{Busy: busy, At: at}
}
