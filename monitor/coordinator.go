package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rincewound/klemme/serial"
)

const (
	// readBufferSize bounds a single read from the port.
	readBufferSize = 256
	// coalesceWindow is the maximum gap between chunks of one burst.
	coalesceWindow = 5 * time.Millisecond

	// Command sends from the front end must never block; the backlog is
	// far above any realistic command burst. Events are drained every
	// redraw, so their backlog covers multiple full bursts.
	commandBacklog = 16
	eventBacklog   = 256
)

// writeFailedMessage is the fixed history line emitted for a failed write.
const writeFailedMessage = "Failed to write to port"

// Stats is a snapshot of the session counters the coordinator maintains
// for the status line.
type Stats struct {
	BytesReceived int64
	BytesSent     int64
	Entries       int64
	Errors        int64
	LastActivity  time.Time
}

// Coordinator owns the connection lifecycle and all port I/O. Exactly one
// goroutine runs its loop; the front end talks to it exclusively through
// Commands and listens on Events.
type Coordinator struct {
	logger   *slog.Logger
	commands chan Command
	events   chan Event

	// Loop-owned state, touched only by Run.
	phase    Phase
	ctx      *serial.Context
	coalesce coalescer
	readBuf  [readBufferSize]byte
	now      func() time.Time

	statsMu sync.RWMutex
	stats   Stats
}

// New creates a coordinator in the Stopped phase. Run must be started on
// its own goroutine before commands have any effect.
func New(logger *slog.Logger) *Coordinator {
	return &Coordinator{
		logger:   logger,
		commands: make(chan Command, commandBacklog),
		events:   make(chan Event, eventBacklog),
		phase:    Stopped,
		coalesce: coalescer{window: coalesceWindow},
		now:      time.Now,
	}
}

// Commands is the channel the front end sends instructions on.
func (c *Coordinator) Commands() chan<- Command {
	return c.commands
}

// Events is the channel the coordinator reports on, in production order.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// Stats returns a copy of the current session counters.
func (c *Coordinator) Stats() Stats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return c.stats
}

// Run executes the coordinator loop until ctx is cancelled. Per iteration:
// acquire a command under the phase-dependent blocking policy, apply it to
// the state machine, then, if Running, perform one write of any bytes
// queued this iteration and one bounded read.
func (c *Coordinator) Run(ctx context.Context) {
	c.logger.Debug("coordinator loop starting")
	for {
		cmd, ok := c.nextCommand(ctx)
		if !ok {
			c.shutdown()
			return
		}

		var toSend []byte
		if cmd != nil {
			toSend = c.apply(ctx, cmd)
		}
		if c.phase == Running {
			c.cycle(ctx, toSend)
		}
	}
}

// nextCommand acquires at most one command. While Stopped it blocks until
// a command arrives, costing nothing when idle. While Running it polls, so
// the read/write cycle keeps running regardless of command traffic. The
// second return value is false once the run context is cancelled.
func (c *Coordinator) nextCommand(ctx context.Context) (Command, bool) {
	if c.phase == Stopped {
		select {
		case cmd := <-c.commands:
			return cmd, true
		case <-ctx.Done():
			return nil, false
		}
	}

	select {
	case cmd := <-c.commands:
		return cmd, true
	case <-ctx.Done():
		return nil, false
	default:
		return nil, true
	}
}

// apply runs one command through the state machine and returns any bytes
// queued for this iteration's write.
func (c *Coordinator) apply(ctx context.Context, cmd Command) []byte {
	switch cmd := cmd.(type) {
	case StartCommand:
		if cmd.Ctx == nil {
			c.logger.Warn("start command without context ignored")
			return nil
		}
		if c.phase == Running {
			// Duplicate Start: the state machine ignores it, but the
			// replacement context must not leak its handle.
			if err := cmd.Ctx.Close(); err != nil {
				c.logger.Warn("closing duplicate context failed", "port", cmd.Ctx.Name, "error", err)
			}
			return nil
		}
		c.ctx = cmd.Ctx
		c.phase = Running
		c.emit(ctx, StartedEvent{})
		c.logger.Info("connection started", "port", cmd.Ctx.Name)

	case StopCommand:
		if c.phase == Stopped {
			return nil
		}
		c.phase = Stopped
		c.emit(ctx, StoppedEvent{})
		c.closeContext()
		c.logger.Info("connection stopped")

	case SendCommand:
		if c.phase == Running {
			return cmd.Data
		}
		// Sent while stopped: discarded, never queued past a later Start.
		c.logger.Debug("send while stopped discarded", "bytes", len(cmd.Data))
	}
	return nil
}

// cycle performs one write (if bytes were queued this iteration) and one
// bounded read against the running context.
func (c *Coordinator) cycle(ctx context.Context, toSend []byte) {
	if len(toSend) > 0 {
		c.write(ctx, toSend)
	}
	c.read(ctx)
}

func (c *Coordinator) write(ctx context.Context, data []byte) {
	if _, err := c.ctx.Port.Write(data); err != nil {
		c.logger.Error("write failed", "port", c.ctx.Name, "error", err)
		c.statsMu.Lock()
		c.stats.Errors++
		c.statsMu.Unlock()
		c.emit(ctx, ErrorEvent{Message: writeFailedMessage})
		return
	}

	entry := HistoryEntry{At: c.now(), Dir: Tx, Data: data}
	c.statsMu.Lock()
	c.stats.BytesSent += int64(len(data))
	c.stats.Entries++
	c.stats.LastActivity = entry.At
	c.statsMu.Unlock()

	c.emit(ctx, DataEvent{Entry: entry})
	c.logger.Debug("wrote to port", "port", c.ctx.Name, "bytes", len(data))
}

func (c *Coordinator) read(ctx context.Context) {
	n, err := c.ctx.Port.Read(c.readBuf[:])
	if err != nil {
		// Read problems surface as missing data, not as history noise.
		c.logger.Debug("read failed", "port", c.ctx.Name, "error", err)
		return
	}
	if n == 0 {
		return
	}

	chunk := make([]byte, n)
	copy(chunk, c.readBuf[:n])

	at := c.now()
	c.statsMu.Lock()
	c.stats.BytesReceived += int64(n)
	c.stats.LastActivity = at
	c.statsMu.Unlock()

	if flushed := c.coalesce.absorb(chunk, at); flushed != nil {
		c.statsMu.Lock()
		c.stats.Entries++
		c.statsMu.Unlock()
		c.emit(ctx, DataEvent{Entry: *flushed})
	}
}

// emit delivers an event unless the run context has been cancelled. A
// vanished consumer therefore ends the loop cleanly instead of wedging or
// crashing it.
func (c *Coordinator) emit(ctx context.Context, ev Event) bool {
	select {
	case c.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Coordinator) shutdown() {
	if c.phase == Running {
		c.closeContext()
		c.phase = Stopped
	}
	c.logger.Debug("coordinator loop ended")
}

func (c *Coordinator) closeContext() {
	if c.ctx == nil {
		return
	}
	if err := c.ctx.Close(); err != nil {
		c.logger.Warn("closing port failed", "port", c.ctx.Name, "error", err)
	}
	c.ctx = nil
	c.coalesce.reset()
}
