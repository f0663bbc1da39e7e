package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rincewound/klemme/serial"
)

// ValidationError contains details about a settings validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the settings for errors. The display encodings are
// passed in so this package stays independent of the display layer.
// The port device is not checked here: a saved device may legitimately
// be unplugged, and opening reports that case on its own.
func Validate(s *Settings, encodings []string) error {
	var errors ValidationErrors

	if !containsInt(serial.BaudRates, s.BaudRate) {
		errors = append(errors, ValidationError{
			Field:   "baud_rate",
			Message: fmt.Sprintf("invalid baud rate: %d", s.BaudRate),
		})
	}

	if !containsInt(serial.DataBits, s.DataBits) {
		errors = append(errors, ValidationError{
			Field:   "data_bits",
			Message: fmt.Sprintf("invalid data bits: %d", s.DataBits),
		})
	}

	if !containsInt(serial.StopBits, s.StopBits) {
		errors = append(errors, ValidationError{
			Field:   "stop_bits",
			Message: fmt.Sprintf("invalid stop bits: %d", s.StopBits),
		})
	}

	if !containsString(serial.Parities, s.Parity) {
		errors = append(errors, ValidationError{
			Field:   "parity",
			Message: fmt.Sprintf("invalid parity: %s", s.Parity),
		})
	}

	if !containsString(CRLFModes, s.CRLFMode) {
		errors = append(errors, ValidationError{
			Field:   "crlf_mode",
			Message: fmt.Sprintf("invalid line ending mode: %s", s.CRLFMode),
		})
	}

	if !containsString(InputModes, s.InputMode) {
		errors = append(errors, ValidationError{
			Field:   "input_mode",
			Message: fmt.Sprintf("invalid input mode: %s", s.InputMode),
		})
	}

	if !containsFold(encodings, s.DisplayMode) {
		errors = append(errors, ValidationError{
			Field:   "display_mode",
			Message: fmt.Sprintf("unknown display mode: %s (available: %s)",
				s.DisplayMode, strings.Join(encodings, ", ")),
		})
	}

	if s.Logging.BasePath != "" {
		if info, err := os.Stat(s.Logging.BasePath); err != nil || !info.IsDir() {
			errors = append(errors, ValidationError{
				Field:   "logging.base_path",
				Message: fmt.Sprintf("directory does not exist: %s", s.Logging.BasePath),
			})
		}
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func containsInt(slice []int, val int) bool {
	for _, item := range slice {
		if item == val {
			return true
		}
	}
	return false
}

func containsString(slice []string, val string) bool {
	for _, item := range slice {
		if item == val {
			return true
		}
	}
	return false
}

func containsFold(slice []string, val string) bool {
	for _, item := range slice {
		if strings.EqualFold(item, val) {
			return true
		}
	}
	return false
}
