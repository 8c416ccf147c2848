// Package logic contains pure control logic for the repeater: carrier-detect
// debouncing and the activity state machine.
// This package has NO external dependencies (no serial, GPIO, audio, or
// time.Sleep). Time is always injectable via time.Time parameters.
package logic

import "time"

// State represents the activity state of the repeater.
type State string

const (
	// StateActive means the repeater is attended: traffic has been heard
	// recently and all announcements run on schedule.
	StateActive State = "ACTIVE"

	// StateSleeping means the channel has been quiet for the configured
	// idle period. Announcements may be suppressed while sleeping.
	StateSleeping State = "SLEEPING"

	// StateWaking is the transient state entered on a busy edge while
	// sleeping. The carrier must hold for the wake duration before the
	// repeater is promoted back to StateActive; a short key-up drops it
	// straight back to StateSleeping.
	StateWaking State = "WAKING"
)

// Sample is a single raw reading of the carrier-detect line.
type Sample struct {
	Busy bool
	At   time.Time
}

// BusyChanged is a debounced edge on the carrier-detect line.
type BusyChanged struct {
	Busy bool
	At   time.Time
}

// StateChanged records an activity state transition.
type StateChanged struct {
	From State
	To   State
	At   time.Time
}
