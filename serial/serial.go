// Package serial owns the transport side of the monitor: the closed
// parameter enumerations, the typed open failures, and the Context tying an
// identifying port name to one open handle.
package serial

import (
	"io"
	"time"
)

// Timeouts applied to every opened port. Reads return after ReadTimeout
// with whatever arrived (possibly nothing); writes are abandoned with an
// error after WriteTimeout.
const (
	ReadTimeout  = 125 * time.Millisecond
	WriteTimeout = 2500 * time.Millisecond
)

// Closed enumerations for connection parameters. Settings rotation walks
// these tables in order; anything outside them is rejected as BadSettings.
var (
	BaudRates = []int{9600, 19200, 38400, 57600, 115200, 230400, 460800, 921600}
	DataBits  = []int{5, 6, 7, 8}
	StopBits  = []int{1, 2}
	Parities  = []string{"None", "Odd", "Even"}
)

// PortConfig contains the parameters for opening a serial port.
type PortConfig struct {
	Device   string
	BaudRate int
	DataBits int
	StopBits int
	Parity   string // "None", "Odd", "Even"
}

// Port defines the operations the monitor needs from a serial port.
type Port interface {
	io.ReadWriteCloser

	// Device returns the device path.
	Device() string

	// IsOpen returns true if the port is currently open.
	IsOpen() bool
}

// Context ties the identifying port name to an open handle. It is the unit
// of connection lifetime: handed to the coordinator on Start and closed on
// Stop or replacement. Identity is the name; two contexts with equal names
// refer to the same connection.
type Context struct {
	Name string
	Port Port
}

// Close releases the underlying handle. Safe to call on an already closed
// context.
func (c *Context) Close() error {
	if c == nil || c.Port == nil {
		return nil
	}
	return c.Port.Close()
}

// Same reports whether both contexts name the same connection.
func (c *Context) Same(other *Context) bool {
	if c == nil || other == nil {
		return false
	}
	return c.Name == other.Name
}

func containsInt(table []int, val int) bool {
	for _, item := range table {
		if item == val {
			return true
		}
	}
	return false
}

func containsString(table []string, val string) bool {
	for _, item := range table {
		if item == val {
			return true
		}
	}
	return false
}
