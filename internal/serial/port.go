//go:build linux

package serial

import (
	"fmt"

	"github.com/pkg/term"
	"golang.org/x/sys/unix"
)

// Port is an open connection to the interface board. It serves as both
// the busy source (DSR) and the keyer (RTS+DTR).
type Port struct {
	t *term.Term
}

// Open opens the serial device and forces the transmitter unkeyed.
func Open(device string) (*Port, error) {
	t, err := term.Open(device, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}
	if err := t.SetSpeed(baudRate); err != nil {
		t.Close()
		return nil, fmt.Errorf("set speed on %s: %w", device, err)
	}

	p := &Port{t: t}

	// Make sure we come up with the transmitter off.
	if err := p.Unkey(); err != nil {
		t.Close()
		return nil, fmt.Errorf("clear keying lines on %s: %w", device, err)
	}
	return p, nil
}

// ReadBusy reads the carrier-detect state from the DSR modem line.
func (p *Port) ReadBusy() (bool, error) {
	status, err := unix.IoctlGetInt(int(p.t.Fd()), unix.TIOCMGET)
	if err != nil {
		return false, fmt.Errorf("read modem status: %w", err)
	}
	return status&unix.TIOCM_DSR != 0, nil
}

// Key asserts RTS and DTR, enabling the transmitter.
func (p *Port) Key() error {
	return p.setControl(unix.TIOCM_RTS|unix.TIOCM_DTR, true)
}

// Unkey drops RTS and DTR, disabling the transmitter.
func (p *Port) Unkey() error {
	return p.setControl(unix.TIOCM_RTS|unix.TIOCM_DTR, false)
}

// Close unkeys (best effort) and closes the port.
func (p *Port) Close() error {
	p.Unkey()
	return p.t.Close()
}

func (p *Port) setControl(bits int, on bool) error {
	fd := int(p.t.Fd())
	status, err := unix.IoctlGetInt(fd, unix.TIOCMGET)
	if err != nil {
		return fmt.Errorf("read modem status: %w", err)
	}
	if on {
		status |= bits
	} else {
		status &^= bits
	}
	if err := unix.IoctlSetInt(fd, unix.TIOCMSET, status); err != nil {
		return fmt.Errorf("set modem control: %w", err)
	}
	return nil
}
