package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rincewound/klemme/serial"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startCoordinator runs a coordinator in the background and tears it
// down when the test finishes.
func startCoordinator(t *testing.T) (*Coordinator, context.CancelFunc, chan struct{}) {
	t.Helper()

	coord := New(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		coord.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return coord, cancel, done
}

func nextEvent(t *testing.T, coord *Coordinator) Event {
	t.Helper()

	select {
	case ev := <-coord.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for coordinator event")
		return nil
	}
}

func openMock(name string) (*serial.MockPort, *serial.Context) {
	port := serial.NewMockPort(name)
	return port, &serial.Context{Name: name, Port: port}
}

func TestCoordinatorStartAndStop(t *testing.T) {
	coord, _, _ := startCoordinator(t)
	port, sctx := openMock("mock0")

	coord.Commands() <- StartCommand{Ctx: sctx}
	assert.IsType(t, StartedEvent{}, nextEvent(t, coord))

	coord.Commands() <- StopCommand{}
	assert.IsType(t, StoppedEvent{}, nextEvent(t, coord))

	// The connection is released after the stop is announced.
	assert.Eventually(t, func() bool { return !port.IsOpen() },
		time.Second, time.Millisecond)
}

func TestCoordinatorSendWritesToPort(t *testing.T) {
	coord, _, _ := startCoordinator(t)
	port, sctx := openMock("mock0")

	coord.Commands() <- StartCommand{Ctx: sctx}
	require.IsType(t, StartedEvent{}, nextEvent(t, coord))

	coord.Commands() <- SendCommand{Data: []byte{0xDE, 0xAD}}

	ev := nextEvent(t, coord)
	data, ok := ev.(DataEvent)
	require.True(t, ok, "expected DataEvent, got %T", ev)
	assert.Equal(t, Tx, data.Entry.Dir)
	assert.Equal(t, []byte{0xDE, 0xAD}, data.Entry.Data)
	assert.False(t, data.Entry.At.IsZero())

	assert.Equal(t, [][]byte{{0xDE, 0xAD}}, port.GetWrites())
}

func TestCoordinatorWriteFailure(t *testing.T) {
	coord, _, _ := startCoordinator(t)
	port, sctx := openMock("mock0")

	coord.Commands() <- StartCommand{Ctx: sctx}
	require.IsType(t, StartedEvent{}, nextEvent(t, coord))

	port.SetWriteError(errors.New("device gone"))
	coord.Commands() <- SendCommand{Data: []byte{0x01}}

	ev := nextEvent(t, coord)
	errEv, ok := ev.(ErrorEvent)
	require.True(t, ok, "expected ErrorEvent, got %T", ev)
	assert.Equal(t, "Failed to write to port", errEv.Message)
	assert.Empty(t, port.GetWrites())

	// The session survives the failure: the next send goes through
	// with no further events in between.
	port.ClearWriteError()
	coord.Commands() <- SendCommand{Data: []byte{0x02}}

	ev = nextEvent(t, coord)
	data, ok := ev.(DataEvent)
	require.True(t, ok, "expected DataEvent, got %T", ev)
	assert.Equal(t, Tx, data.Entry.Dir)
	assert.Equal(t, []byte{0x02}, data.Entry.Data)
}

func TestCoordinatorStartWhileRunningIsIgnored(t *testing.T) {
	coord, _, _ := startCoordinator(t)
	_, first := openMock("mock0")
	second, secondCtx := openMock("mock1")

	coord.Commands() <- StartCommand{Ctx: first}
	require.IsType(t, StartedEvent{}, nextEvent(t, coord))

	coord.Commands() <- StartCommand{Ctx: secondCtx}

	// The duplicate context is closed rather than adopted.
	assert.Eventually(t, func() bool { return !second.IsOpen() },
		time.Second, time.Millisecond)

	// No second StartedEvent: the next event is the echo of a send.
	coord.Commands() <- SendCommand{Data: []byte{0xFF}}
	ev := nextEvent(t, coord)
	data, ok := ev.(DataEvent)
	require.True(t, ok, "expected DataEvent, got %T", ev)
	assert.Equal(t, Tx, data.Entry.Dir)
}

func TestCoordinatorStopWhileStoppedIsIgnored(t *testing.T) {
	coord, _, _ := startCoordinator(t)
	_, sctx := openMock("mock0")

	coord.Commands() <- StopCommand{}
	coord.Commands() <- StartCommand{Ctx: sctx}

	// No StoppedEvent was emitted for the redundant stop.
	assert.IsType(t, StartedEvent{}, nextEvent(t, coord))
}

func TestCoordinatorSendWhileStoppedIsDiscarded(t *testing.T) {
	coord, _, _ := startCoordinator(t)
	port, sctx := openMock("mock0")

	coord.Commands() <- SendCommand{Data: []byte{0xAA}}
	coord.Commands() <- StartCommand{Ctx: sctx}
	require.IsType(t, StartedEvent{}, nextEvent(t, coord))

	coord.Commands() <- SendCommand{Data: []byte{0xBB}}
	ev := nextEvent(t, coord)
	data, ok := ev.(DataEvent)
	require.True(t, ok, "expected DataEvent, got %T", ev)
	assert.Equal(t, []byte{0xBB}, data.Entry.Data)

	// The discarded payload never reached the port.
	assert.Equal(t, [][]byte{{0xBB}}, port.GetWrites())
}

func TestCoordinatorReceiveCoalescesBursts(t *testing.T) {
	coord, _, _ := startCoordinator(t)
	port, sctx := openMock("mock0")

	// Queue two chunks ahead of time so back-to-back reads pick them
	// up well inside the coalescing window.
	port.QueueRead([]byte{0x01, 0x02, 0x03})
	port.QueueRead([]byte{0x04, 0x05, 0x06})

	coord.Commands() <- StartCommand{Ctx: sctx}
	require.IsType(t, StartedEvent{}, nextEvent(t, coord))

	// Let the burst land and the window lapse, then break it with
	// fresh traffic.
	time.Sleep(30 * time.Millisecond)
	port.QueueRead([]byte{0x07})

	ev := nextEvent(t, coord)
	data, ok := ev.(DataEvent)
	require.True(t, ok, "expected DataEvent, got %T", ev)
	assert.Equal(t, Rx, data.Entry.Dir)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, data.Entry.Data)
	assert.False(t, data.Entry.At.IsZero())
}

func TestCoordinatorCancelReleasesPort(t *testing.T) {
	coord := New(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		coord.Run(ctx)
	}()

	port, sctx := openMock("mock0")
	coord.Commands() <- StartCommand{Ctx: sctx}
	require.IsType(t, StartedEvent{}, nextEvent(t, coord))

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("coordinator did not shut down after cancellation")
	}
	assert.False(t, port.IsOpen())
}

func TestCoordinatorStats(t *testing.T) {
	coord, _, _ := startCoordinator(t)
	port, sctx := openMock("mock0")

	coord.Commands() <- StartCommand{Ctx: sctx}
	require.IsType(t, StartedEvent{}, nextEvent(t, coord))

	coord.Commands() <- SendCommand{Data: []byte{0x10, 0x20}}
	require.IsType(t, DataEvent{}, nextEvent(t, coord))

	stats := coord.Stats()
	assert.Equal(t, int64(2), stats.BytesSent)
	assert.Equal(t, int64(1), stats.Entries)
	assert.False(t, stats.LastActivity.IsZero())

	port.QueueRead([]byte{0x30, 0x40, 0x50})
	time.Sleep(30 * time.Millisecond)
	port.QueueRead([]byte{0x60})
	require.IsType(t, DataEvent{}, nextEvent(t, coord))

	stats = coord.Stats()
	assert.Equal(t, int64(4), stats.BytesReceived)
	assert.Equal(t, int64(2), stats.Entries)
}
