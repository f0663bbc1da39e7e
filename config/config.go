// Package config persists the monitor settings between runs.
package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rincewound/klemme/serial"
)

// CRLFModes lists the line ending choices for transmitted input, in
// rotation order.
var CRLFModes = []string{"None", "CR", "LF", "CRLF"}

// InputModes lists the interactive input interpretations, in rotation
// order.
var InputModes = []string{"Default", "Hex"}

// Settings is the persisted application state
type Settings struct {
	Port        string        `json:"port"`
	BaudRate    int           `json:"baud_rate"`
	DataBits    int           `json:"data_bits"`
	StopBits    int           `json:"stop_bits"`
	Parity      string        `json:"parity"`
	DisplayMode string        `json:"display_mode"`
	CRLFMode    string        `json:"crlf_mode"`
	InputMode   string        `json:"input_mode"`
	Logging     LoggingConfig `json:"logging"`
}

// LoggingConfig defines log file settings
type LoggingConfig struct {
	Level      string `json:"level"`
	BasePath   string `json:"base_path"`
	Filename   string `json:"filename"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	Compress   bool   `json:"compress"`
}

// Load reads settings from a file. A missing file yields defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s := &Settings{}
		s.applyDefaults()
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}

	// Apply defaults
	s.applyDefaults()

	return &s, nil
}

// Save writes the settings to path, creating parent directories as
// needed.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultPath returns the per-user settings location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "klemme", "settings.json"), nil
}

// PortConfig returns the serial parameters currently selected.
func (s *Settings) PortConfig() serial.PortConfig {
	return serial.PortConfig{
		Device:   s.Port,
		BaudRate: s.BaudRate,
		DataBits: s.DataBits,
		StopBits: s.StopBits,
		Parity:   s.Parity,
	}
}

// applyDefaults sets default values for unspecified fields
func (s *Settings) applyDefaults() {
	if s.BaudRate == 0 {
		s.BaudRate = 9600
	}
	if s.DataBits == 0 {
		s.DataBits = 8
	}
	if s.StopBits == 0 {
		s.StopBits = 1
	}
	if s.Parity == "" {
		s.Parity = "None"
	}
	if s.DisplayMode == "" {
		s.DisplayMode = "hex"
	}
	if s.CRLFMode == "" {
		s.CRLFMode = "None"
	}
	if s.InputMode == "" {
		s.InputMode = "Default"
	}

	// Logging defaults
	if s.Logging.Level == "" {
		s.Logging.Level = "info"
	}
	if s.Logging.Filename == "" {
		s.Logging.Filename = "klemme.log"
	}
	if s.Logging.MaxSizeMB == 0 {
		s.Logging.MaxSizeMB = 10
	}
	if s.Logging.MaxBackups == 0 {
		s.Logging.MaxBackups = 3
	}
}

// NextBaudRate advances to the next baud rate choice.
func (s *Settings) NextBaudRate() {
	s.BaudRate = nextInt(serial.BaudRates, s.BaudRate)
}

// NextDataBits advances to the next data bits choice.
func (s *Settings) NextDataBits() {
	s.DataBits = nextInt(serial.DataBits, s.DataBits)
}

// NextStopBits advances to the next stop bits choice.
func (s *Settings) NextStopBits() {
	s.StopBits = nextInt(serial.StopBits, s.StopBits)
}

// NextParity advances to the next parity choice.
func (s *Settings) NextParity() {
	s.Parity = nextString(serial.Parities, s.Parity)
}

// NextCRLFMode advances to the next line ending choice.
func (s *Settings) NextCRLFMode() {
	s.CRLFMode = nextString(CRLFModes, s.CRLFMode)
}

// NextInputMode toggles between the input interpretations.
func (s *Settings) NextInputMode() {
	s.InputMode = nextString(InputModes, s.InputMode)
}

func nextInt(table []int, current int) int {
	for i, v := range table {
		if v == current {
			return table[(i+1)%len(table)]
		}
	}
	return table[0]
}

func nextString(table []string, current string) string {
	for i, v := range table {
		if v == current {
			return table[(i+1)%len(table)]
		}
	}
	return table[0]
}
