// Package gpio provides the GPIO alternative to the serial interface
// board: a carrier-operated-switch (COS) input line for the busy signal
// and an output line for keying the transmitter.
// The real implementation uses the Linux GPIO character device.
package gpio

// DefaultChip is the GPIO chip on a stock Raspberry Pi.
const DefaultChip = "gpiochip0"

// Pin defaults (BCM numbering)
const (
	DefaultBusyPin = 26 // COS input from the receiver
	DefaultPTTPin  = 16 // transmit enable output
)
