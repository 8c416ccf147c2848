package serial

import "errors"

// FakePort is a test double for the interface board. It returns scripted
// busy readings and records keying transitions.
type FakePort struct {
	// Samples contains scripted busy values to return.
	// Each call to ReadBusy consumes the next sample; when exhausted,
	// the last sample is returned repeatedly.
	Samples []bool

	// index tracks current position in Samples
	index int

	// Keyed is the current state of the keying lines.
	Keyed bool

	// Transitions records every Key/Unkey call in order, true for Key.
	Transitions []bool

	// Closed tracks if Close was called.
	Closed bool

	// ReadError, if set, will be returned by ReadBusy.
	ReadError error

	// KeyError, if set, will be returned by Key and Unkey.
	KeyError error
}

// NewFakePort creates a FakePort with the given scripted busy readings.
func NewFakePort(samples []bool) *FakePort {
	return &FakePort{Samples: samples}
}

// ReadBusy returns the next scripted busy value.
func (f *FakePort) ReadBusy() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}
	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}
	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return sample, nil
}

// Key records a key-up.
func (f *FakePort) Key() error {
	if f.KeyError != nil {
		return f.KeyError
	}
	f.Keyed = true
	f.Transitions = append(f.Transitions, true)
	return nil
}

// Unkey records a key-down.
func (f *FakePort) Unkey() error {
	if f.KeyError != nil {
		return f.KeyError
	}
	f.Keyed = false
	f.Transitions = append(f.Transitions, false)
	return nil
}

// Close marks the port as closed.
func (f *FakePort) Close() error {
	f.Closed = true
	return nil
}

// Reset returns the fake to its initial state.
func (f *FakePort) Reset() {
	f.index = 0
	f.Keyed = false
	f.Transitions = nil
	f.Closed = false
	f.ReadError = nil
	f.KeyError = nil
}
