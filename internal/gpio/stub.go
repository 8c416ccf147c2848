//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// BusyLine is not available on non-Linux platforms.
type BusyLine struct{}

// NewBusyLine returns an error on non-Linux platforms.
func NewBusyLine(chipName string, pin int) (*BusyLine, error) {
	return nil, errUnsupported
}

// ReadBusy is not implemented on non-Linux platforms.
func (b *BusyLine) ReadBusy() (bool, error) {
	return false, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (b *BusyLine) Close() error {
	return nil
}

// PTTLine is not available on non-Linux platforms.
type PTTLine struct{}

// NewPTTLine returns an error on non-Linux platforms.
func NewPTTLine(chipName string, pin int) (*PTTLine, error) {
	return nil, errUnsupported
}

// Key is not implemented on non-Linux platforms.
func (p *PTTLine) Key() error {
	return errUnsupported
}

// Unkey is not implemented on non-Linux platforms.
func (p *PTTLine) Unkey() error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (p *PTTLine) Close() error {
	return nil
}
