package serial

import (
	"fmt"
	"sync"
	"time"
)

// MockPort implements Port for tests. Writes are captured for inspection;
// reads drain chunks queued with QueueRead, mimicking a real port's
// timeout behavior: Read returns (0, nil) when nothing arrives in time.
type MockPort struct {
	mu          sync.Mutex
	device      string
	isOpen      bool
	writes      [][]byte
	writeErr    error // If set, Write will return this error
	reads       chan []byte
	carry       []byte
	readTimeout time.Duration
}

// NewMockPort creates a new mock port. The mock read timeout is kept short
// so coordinator tests cycle quickly.
func NewMockPort(device string) *MockPort {
	return &MockPort{
		device:      device,
		isOpen:      true,
		writes:      make([][]byte, 0),
		reads:       make(chan []byte, 64),
		readTimeout: time.Millisecond,
	}
}

// QueueRead queues a chunk to be returned by a subsequent Read.
func (p *MockPort) QueueRead(data []byte) {
	chunk := make([]byte, len(data))
	copy(chunk, data)
	p.reads <- chunk
}

// Read returns the next queued chunk, or (0, nil) after the mock read
// timeout elapses with nothing queued. Oversized chunks are carried over
// to the next call.
func (p *MockPort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	if !p.isOpen {
		p.mu.Unlock()
		return 0, fmt.Errorf("port is closed")
	}
	if len(p.carry) > 0 {
		n := copy(buf, p.carry)
		p.carry = p.carry[n:]
		p.mu.Unlock()
		return n, nil
	}
	timeout := p.readTimeout
	p.mu.Unlock()

	select {
	case chunk := <-p.reads:
		n := copy(buf, chunk)
		if n < len(chunk) {
			p.mu.Lock()
			p.carry = chunk[n:]
			p.mu.Unlock()
		}
		return n, nil
	case <-time.After(timeout):
		return 0, nil
	}
}

// Write records data written to the mock port.
func (p *MockPort) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isOpen {
		return 0, fmt.Errorf("port is closed")
	}
	if p.writeErr != nil {
		return 0, p.writeErr
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	p.writes = append(p.writes, dataCopy)
	return len(data), nil
}

// Close closes the mock port.
func (p *MockPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isOpen = false
	return nil
}

// Device returns the mock device path.
func (p *MockPort) Device() string {
	return p.device
}

// IsOpen returns true if the mock port is open.
func (p *MockPort) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isOpen
}

// GetWrites returns all individual write operations.
func (p *MockPort) GetWrites() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := make([][]byte, len(p.writes))
	for i, w := range p.writes {
		result[i] = make([]byte, len(w))
		copy(result[i], w)
	}
	return result
}

// SetWriteError sets an error to be returned on subsequent writes.
func (p *MockPort) SetWriteError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}

// ClearWriteError clears any write error.
func (p *MockPort) ClearWriteError() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = nil
}

// SetReadTimeout adjusts how long Read waits for queued data.
func (p *MockPort) SetReadTimeout(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readTimeout = d
}
