package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEncodings = []string{"decimal", "hex", "ascii", "mixedhex", "mixeddec"}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)

	assert.Equal(t, 9600, s.BaudRate)
	assert.Equal(t, 8, s.DataBits)
	assert.Equal(t, 1, s.StopBits)
	assert.Equal(t, "None", s.Parity)
	assert.Equal(t, "hex", s.DisplayMode)
	assert.Equal(t, "None", s.CRLFMode)
	assert.Equal(t, "Default", s.InputMode)
	assert.Equal(t, "klemme.log", s.Logging.Filename)
	assert.Equal(t, "info", s.Logging.Level)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	s, err := Load(path)
	require.NoError(t, err)
	s.Port = "/dev/ttyUSB0"
	s.BaudRate = 115200
	s.CRLFMode = "CRLF"
	s.InputMode = "Hex"

	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"baud_rate": 115200}`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 115200, s.BaudRate)
	assert.Equal(t, "None", s.Parity)
	assert.Equal(t, "hex", s.DisplayMode)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestRotationWalksTables(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)

	s.NextBaudRate()
	assert.Equal(t, 19200, s.BaudRate)

	s.BaudRate = 921600
	s.NextBaudRate()
	assert.Equal(t, 9600, s.BaudRate)

	s.NextStopBits()
	assert.Equal(t, 2, s.StopBits)
	s.NextStopBits()
	assert.Equal(t, 1, s.StopBits)

	s.NextParity()
	assert.Equal(t, "Odd", s.Parity)
	s.NextParity()
	assert.Equal(t, "Even", s.Parity)
	s.NextParity()
	assert.Equal(t, "None", s.Parity)

	s.NextDataBits()
	assert.Equal(t, 5, s.DataBits)

	s.NextCRLFMode()
	assert.Equal(t, "CR", s.CRLFMode)
	s.CRLFMode = "CRLF"
	s.NextCRLFMode()
	assert.Equal(t, "None", s.CRLFMode)

	s.NextInputMode()
	assert.Equal(t, "Hex", s.InputMode)
	s.NextInputMode()
	assert.Equal(t, "Default", s.InputMode)
}

func TestRotationRecoversFromUnknownValue(t *testing.T) {
	s := &Settings{BaudRate: 1234}
	s.NextBaudRate()
	assert.Equal(t, 9600, s.BaudRate)
}

func TestValidateAcceptsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)

	assert.NoError(t, Validate(s, testEncodings))
}

func TestValidateReportsEveryBadField(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	s.BaudRate = 1234
	s.Parity = "Mark"
	s.CRLFMode = "LFCR"
	s.DisplayMode = "base64"

	err = Validate(s, testEncodings)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := make([]string, len(verrs))
	for i, ve := range verrs {
		fields[i] = ve.Field
	}
	assert.ElementsMatch(t,
		[]string{"baud_rate", "parity", "crlf_mode", "display_mode"}, fields)
	assert.Contains(t, err.Error(), "invalid baud rate: 1234")
}

func TestPortConfig(t *testing.T) {
	s := &Settings{
		Port:     "/dev/ttyACM0",
		BaudRate: 57600,
		DataBits: 7,
		StopBits: 2,
		Parity:   "Even",
	}

	pc := s.PortConfig()
	assert.Equal(t, "/dev/ttyACM0", pc.Device)
	assert.Equal(t, 57600, pc.BaudRate)
	assert.Equal(t, 7, pc.DataBits)
	assert.Equal(t, 2, pc.StopBits)
	assert.Equal(t, "Even", pc.Parity)
}
