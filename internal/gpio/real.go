//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// BusyLine reads the receiver's COS output as the busy signal.
type BusyLine struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewBusyLine requests the COS pin as an input with pull-down, matching
// the open-collector COS outputs these receivers expose.
func NewBusyLine(chipName string, pin int) (*BusyLine, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request COS pin %d: %w", pin, err)
	}

	return &BusyLine{chip: chip, line: line}, nil
}

// ReadBusy returns true when the COS line is asserted.
func (b *BusyLine) ReadBusy() (bool, error) {
	v, err := b.line.Value()
	if err != nil {
		return false, fmt.Errorf("read COS pin: %w", err)
	}
	return v != 0, nil
}

// Close releases the line and chip. The pin is reconfigured to input with
// pull-down first so it comes up in the boot-default state next time.
func (b *BusyLine) Close() error {
	var errs []error
	if b.line != nil {
		if err := b.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure COS pin: %w", err))
		}
		if err := b.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close COS pin: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// PTTLine keys the transmitter through a GPIO output.
type PTTLine struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewPTTLine requests the PTT pin as an output, initially low (unkeyed).
func NewPTTLine(chipName string, pin int) (*PTTLine, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request PTT pin %d: %w", pin, err)
	}

	return &PTTLine{chip: chip, line: line}, nil
}

// Key drives the PTT line high.
func (p *PTTLine) Key() error {
	if err := p.line.SetValue(1); err != nil {
		return fmt.Errorf("set PTT pin: %w", err)
	}
	return nil
}

// Unkey drives the PTT line low.
func (p *PTTLine) Unkey() error {
	if err := p.line.SetValue(0); err != nil {
		return fmt.Errorf("clear PTT pin: %w", err)
	}
	return nil
}

// Close unkeys (best effort), then releases the line and chip.
func (p *PTTLine) Close() error {
	var errs []error
	if p.line != nil {
		if err := p.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear PTT pin: %w", err))
		}
		if err := p.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close PTT pin: %w", err))
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
