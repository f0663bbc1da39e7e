// Package monitor implements the serial I/O coordinator: a perpetual worker
// goroutine that owns the open connection, drains a command channel, pumps
// bytes in both directions while running, and reports everything it sees as
// timestamped events. The front end and the coordinator share nothing but
// the two channels.
package monitor

import (
	"time"

	"github.com/rincewound/klemme/serial"
)

// Direction tags a history entry as received or transmitted.
type Direction int

const (
	Rx Direction = iota
	Tx
)

func (d Direction) String() string {
	if d == Tx {
		return "TX"
	}
	return "RX"
}

// HistoryEntry is one timestamped, direction-tagged record of bytes. All
// bytes of one entry were observed or queued within one coalescing window.
// Entries are immutable once emitted.
type HistoryEntry struct {
	At   time.Time
	Dir  Direction
	Data []byte
}

// Phase is the coordinator's lifecycle tag. State-machine guards compare
// the tag only; the running context travels alongside it and never takes
// part in comparisons.
type Phase int

const (
	Stopped Phase = iota
	Running
)

func (p Phase) String() string {
	if p == Running {
		return "running"
	}
	return "stopped"
}

// Command is a front-end instruction to the coordinator. Whatever a command
// carries belongs to the coordinator once sent.
type Command interface{ isCommand() }

// StartCommand hands a freshly opened context to the coordinator.
type StartCommand struct{ Ctx *serial.Context }

// StopCommand closes the active connection, if any.
type StopCommand struct{}

// SendCommand queues bytes for the next write cycle.
type SendCommand struct{ Data []byte }

func (StartCommand) isCommand() {}
func (StopCommand) isCommand()  {}
func (SendCommand) isCommand()  {}

// Event is a coordinator report to the front end.
type Event interface{ isEvent() }

// StartedEvent reports the transition to Running.
type StartedEvent struct{}

// StoppedEvent reports the transition to Stopped.
type StoppedEvent struct{}

// DataEvent carries one completed history entry.
type DataEvent struct{ Entry HistoryEntry }

// ErrorEvent carries a display-ready error line.
type ErrorEvent struct{ Message string }

func (StartedEvent) isEvent() {}
func (StoppedEvent) isEvent() {}
func (DataEvent) isEvent()    {}
func (ErrorEvent) isEvent()   {}
