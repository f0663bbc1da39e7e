package serial

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// RealPort implements Port using a physical serial port.
type RealPort struct {
	port   serial.Port
	config PortConfig
	isOpen bool
}

// OpenContext opens the configured device and returns a Context ready for
// the coordinator: read timeout applied, output drained, stale buffers
// discarded. Failures are reported as *OpenError.
func OpenContext(config PortConfig) (*Context, error) {
	mode, err := convertMode(config)
	if err != nil {
		return nil, err
	}

	port, openErr := serial.Open(config.Device, mode)
	if openErr != nil {
		return nil, newOpenError(FailedToOpen, openErr)
	}

	if toErr := port.SetReadTimeout(ReadTimeout); toErr != nil {
		port.Close()
		return nil, newOpenError(FailedToOpen, toErr)
	}

	if flushErr := flushPort(port); flushErr != nil {
		port.Close()
		return nil, newOpenError(FailedToFlush, flushErr)
	}

	real := &RealPort{
		port:   port,
		config: config,
		isOpen: true,
	}
	return &Context{Name: config.Device, Port: real}, nil
}

// convertMode validates the parameters against the closed enumerations and
// translates them to the library's mode struct.
func convertMode(config PortConfig) (*serial.Mode, error) {
	if config.Device == "" {
		return nil, newOpenError(BadSettings, fmt.Errorf("no device selected"))
	}
	if !containsInt(BaudRates, config.BaudRate) {
		return nil, newOpenError(BadSettings, fmt.Errorf("unsupported baud rate %d", config.BaudRate))
	}
	if !containsInt(DataBits, config.DataBits) {
		return nil, newOpenError(BadSettings, fmt.Errorf("unsupported data bits %d", config.DataBits))
	}
	if !containsInt(StopBits, config.StopBits) {
		return nil, newOpenError(BadSettings, fmt.Errorf("unsupported stop bits %d", config.StopBits))
	}
	if !containsString(Parities, config.Parity) {
		return nil, newOpenError(BadSettings, fmt.Errorf("unsupported parity %q", config.Parity))
	}

	return &serial.Mode{
		BaudRate: config.BaudRate,
		DataBits: config.DataBits,
		StopBits: convertStopBits(config.StopBits),
		Parity:   convertParity(config.Parity),
	}, nil
}

func flushPort(port serial.Port) error {
	if err := port.Drain(); err != nil {
		return err
	}
	if err := port.ResetInputBuffer(); err != nil {
		return err
	}
	return port.ResetOutputBuffer()
}

// Read reads available bytes, returning after at most ReadTimeout.
func (p *RealPort) Read(buf []byte) (int, error) {
	if !p.isOpen {
		return 0, fmt.Errorf("port is closed")
	}
	return p.port.Read(buf)
}

// Write writes data to the serial port. The library write blocks until the
// driver accepts the bytes, so a watchdog abandons it after WriteTimeout.
func (p *RealPort) Write(data []byte) (int, error) {
	if !p.isOpen {
		return 0, fmt.Errorf("port is closed")
	}

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := p.port.Write(data)
		done <- result{n, err}
	}()

	select {
	case res := <-done:
		return res.n, res.err
	case <-time.After(WriteTimeout):
		return 0, fmt.Errorf("write timed out after %v", WriteTimeout)
	}
}

// Close closes the serial port.
func (p *RealPort) Close() error {
	if !p.isOpen {
		return nil
	}
	p.isOpen = false
	return p.port.Close()
}

// Device returns the device path.
func (p *RealPort) Device() string {
	return p.config.Device
}

// IsOpen returns true if the port is currently open.
func (p *RealPort) IsOpen() bool {
	return p.isOpen
}

// ListPorts returns the serial ports present on the system.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

func convertStopBits(bits int) serial.StopBits {
	switch bits {
	case 2:
		return serial.TwoStopBits
	default:
		return serial.OneStopBit
	}
}

func convertParity(parity string) serial.Parity {
	switch parity {
	case "Odd":
		return serial.OddParity
	case "Even":
		return serial.EvenParity
	default:
		return serial.NoParity
	}
}
