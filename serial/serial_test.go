package serial

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenContextRejectsBadSettings(t *testing.T) {
	cases := []struct {
		name   string
		config PortConfig
	}{
		{"no device", PortConfig{BaudRate: 9600, DataBits: 8, StopBits: 1, Parity: "None"}},
		{"bad baud rate", PortConfig{Device: "/dev/null", BaudRate: 1234, DataBits: 8, StopBits: 1, Parity: "None"}},
		{"bad data bits", PortConfig{Device: "/dev/null", BaudRate: 9600, DataBits: 9, StopBits: 1, Parity: "None"}},
		{"bad stop bits", PortConfig{Device: "/dev/null", BaudRate: 9600, DataBits: 8, StopBits: 3, Parity: "None"}},
		{"bad parity", PortConfig{Device: "/dev/null", BaudRate: 9600, DataBits: 8, StopBits: 1, Parity: "Mark"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, err := OpenContext(tc.config)
			require.Nil(t, ctx)
			require.Error(t, err)

			var openErr *OpenError
			require.True(t, errors.As(err, &openErr))
			assert.Equal(t, BadSettings, openErr.Reason)
		})
	}
}

func TestOpenErrorMessages(t *testing.T) {
	assert.Equal(t, "settings not supported", newOpenError(BadSettings, nil).Error())
	assert.Equal(t, "failed to open port", newOpenError(FailedToOpen, nil).Error())
	assert.Equal(t, "failed to flush port", newOpenError(FailedToFlush, nil).Error())

	cause := errors.New("no such device")
	err := newOpenError(FailedToOpen, cause)
	assert.Equal(t, "failed to open port: no such device", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestConvertModeTranslation(t *testing.T) {
	mode, err := convertMode(PortConfig{
		Device:   "/dev/ttyUSB0",
		BaudRate: 115200,
		DataBits: 7,
		StopBits: 2,
		Parity:   "Even",
	})
	require.NoError(t, err)
	assert.Equal(t, 115200, mode.BaudRate)
	assert.Equal(t, 7, mode.DataBits)
	assert.Equal(t, convertStopBits(2), mode.StopBits)
	assert.Equal(t, convertParity("Even"), mode.Parity)
}

func TestContextIdentity(t *testing.T) {
	a := &Context{Name: "/dev/ttyUSB0"}
	b := &Context{Name: "/dev/ttyUSB0"}
	c := &Context{Name: "/dev/ttyUSB1"}

	assert.True(t, a.Same(b))
	assert.False(t, a.Same(c))
	assert.False(t, a.Same(nil))

	// Closing a context without a handle must be harmless.
	require.NoError(t, a.Close())
	var none *Context
	require.NoError(t, none.Close())
}

func TestMockPortReadQueue(t *testing.T) {
	port := NewMockPort("mock0")

	port.QueueRead([]byte{0x01, 0x02, 0x03})
	buf := make([]byte, 256)
	n, err := port.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, buf[:n])

	// Nothing queued: the mock behaves like a timed-out read.
	n, err = port.Read(buf)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMockPortCarriesOversizedChunks(t *testing.T) {
	port := NewMockPort("mock0")
	port.QueueRead([]byte{0xAA, 0xBB, 0xCC, 0xDD})

	buf := make([]byte, 2)
	n, err := port.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, buf[:n])

	n, err = port.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xCC, 0xDD}, buf[:n])
}

func TestMockPortWrites(t *testing.T) {
	port := NewMockPort("mock0")

	n, err := port.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	boom := errors.New("boom")
	port.SetWriteError(boom)
	_, err = port.Write([]byte("x"))
	assert.Equal(t, boom, err)

	port.ClearWriteError()
	_, err = port.Write([]byte("y"))
	require.NoError(t, err)

	writes := port.GetWrites()
	require.Len(t, writes, 2)
	assert.Equal(t, []byte("hello"), writes[0])
	assert.Equal(t, []byte("y"), writes[1])
}

func TestMockPortClosed(t *testing.T) {
	port := NewMockPort("mock0")
	require.NoError(t, port.Close())
	assert.False(t, port.IsOpen())

	_, err := port.Write([]byte{0x00})
	assert.Error(t, err)
	_, err = port.Read(make([]byte, 8))
	assert.Error(t, err)
}

func TestMockPortReadTimeoutAdjustable(t *testing.T) {
	port := NewMockPort("mock0")
	port.SetReadTimeout(5 * time.Millisecond)

	start := time.Now()
	n, err := port.Read(make([]byte, 8))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}
