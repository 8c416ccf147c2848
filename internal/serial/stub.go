//go:build !linux

package serial

import "errors"

// Port is not available on non-Linux platforms.
type Port struct{}

// Open returns an error on non-Linux platforms.
func Open(device string) (*Port, error) {
	return nil, errors.New("serial: not supported on this platform (requires Linux)")
}

// ReadBusy is not implemented on non-Linux platforms.
func (p *Port) ReadBusy() (bool, error) {
	return false, errors.New("serial: not supported")
}

// Key is not implemented on non-Linux platforms.
func (p *Port) Key() error {
	return errors.New("serial: not supported")
}

// Unkey is not implemented on non-Linux platforms.
func (p *Port) Unkey() error {
	return errors.New("serial: not supported")
}

// Close is not implemented on non-Linux platforms.
func (p *Port) Close() error {
	return nil
}
