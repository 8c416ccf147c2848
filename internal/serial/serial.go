// Package serial talks to the repeater interface board over a serial port.
// The board wires the receiver's carrier detect to DSR and the transmit
// enable to RTS and DTR, so "busy" is a modem-status read and keying is a
// modem-control write. The real implementation requires Linux.
package serial

// DefaultDevice is the interface board's usual device node.
const DefaultDevice = "/dev/ttyUSB0"

// The board runs at a fixed rate; nothing is actually framed over the
// data lines but the port still has to be opened at a valid speed.
const baudRate = 9600
