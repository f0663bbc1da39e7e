package tui

import "encoding/hex"

// buildPayload converts the TX line text into the bytes to transmit.
// Hex input pairs digits into bytes first; the line ending is appended
// afterwards, so a CR setting with an empty line sends a bare CR.
func buildPayload(text, inputMode, crlfMode string) []byte {
	payload := []byte(text)
	if inputMode == "Hex" {
		payload = parseHexInput(text)
	}

	switch crlfMode {
	case "CR":
		payload = append(payload, '\r')
	case "LF":
		payload = append(payload, '\n')
	case "CRLF":
		payload = append(payload, '\r', '\n')
	}
	return payload
}

// parseHexInput pairs hex digits into bytes, ignoring spaces. A
// trailing unpaired digit is dropped.
func parseHexInput(text string) []byte {
	digits := make([]byte, 0, len(text))
	for _, r := range text {
		if r != ' ' && isHexInputRune(r) {
			digits = append(digits, byte(r))
		}
	}
	if len(digits)%2 != 0 {
		digits = digits[:len(digits)-1]
	}

	out, err := hex.DecodeString(string(digits))
	if err != nil {
		return nil
	}
	return out
}
