package format

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

func init() {
	MustRegister(decimalEncoding{})
	MustRegister(hexEncoding{})
	MustRegister(asciiEncoding{})
	MustRegister(mixedHexEncoding{})
	MustRegister(mixedDecimalEncoding{})
}

// printableASCII reports whether b renders as itself in the mixed
// encodings.
func printableASCII(b byte) bool {
	return b >= 0x20 && b < 0x7F
}

// tokenSpan locates the rendered range of the byte at cursor for
// encodings that join one token per byte with single spaces.
func tokenSpan(data []byte, cursor int, token func(byte) string) (int, int) {
	if cursor < 0 || cursor >= len(data) {
		return 0, 0
	}
	start := 0
	for i := 0; i < cursor; i++ {
		start += len(token(data[i])) + 1
	}
	return start, start + len(token(data[cursor]))
}

type decimalEncoding struct{}

func (decimalEncoding) Name() string  { return "decimal" }
func (decimalEncoding) Title() string { return "Decimal" }

func (decimalEncoding) Format(data []byte) string {
	tokens := make([]string, len(data))
	for i, b := range data {
		tokens[i] = strconv.Itoa(int(b))
	}
	return strings.Join(tokens, " ")
}

func (decimalEncoding) Span(data []byte, cursor int) (int, int) {
	return tokenSpan(data, cursor, func(b byte) string { return strconv.Itoa(int(b)) })
}

type hexEncoding struct{}

func (hexEncoding) Name() string  { return "hex" }
func (hexEncoding) Title() string { return "Hex" }

// Format renders three characters per byte, which keeps Span a plain
// multiplication.
func (hexEncoding) Format(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data) * 3)
	for _, b := range data {
		fmt.Fprintf(&sb, "%02X ", b)
	}
	return sb.String()
}

func (hexEncoding) Span(data []byte, cursor int) (int, int) {
	if cursor < 0 || cursor >= len(data) {
		return 0, 0
	}
	return cursor * 3, cursor*3 + 2
}

type asciiEncoding struct{}

func (asciiEncoding) Name() string  { return "ascii" }
func (asciiEncoding) Title() string { return "Ascii" }

func (asciiEncoding) Format(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		sb.WriteString(asciiGlyph(b))
	}
	return sb.String()
}

func (asciiEncoding) Span(data []byte, cursor int) (int, int) {
	if cursor < 0 || cursor >= len(data) {
		return 0, 0
	}
	start := 0
	for i := 0; i < cursor; i++ {
		start += len(asciiGlyph(data[i]))
	}
	return start, start + len(asciiGlyph(data[cursor]))
}

func asciiGlyph(b byte) string {
	r := rune(b)
	if unicode.IsControl(r) {
		return ControlGlyph(b)
	}
	return string(r)
}

type mixedHexEncoding struct{}

func (mixedHexEncoding) Name() string  { return "mixedhex" }
func (mixedHexEncoding) Title() string { return "Mixed Hex" }

func (mixedHexEncoding) Format(data []byte) string {
	tokens := make([]string, len(data))
	for i, b := range data {
		tokens[i] = mixedHexToken(b)
	}
	return strings.Join(tokens, " ")
}

func (mixedHexEncoding) Span(data []byte, cursor int) (int, int) {
	return tokenSpan(data, cursor, mixedHexToken)
}

func mixedHexToken(b byte) string {
	if printableASCII(b) {
		return string(rune(b))
	}
	return fmt.Sprintf("%02X", b)
}

type mixedDecimalEncoding struct{}

func (mixedDecimalEncoding) Name() string  { return "mixeddec" }
func (mixedDecimalEncoding) Title() string { return "Mixed Decimal" }

func (mixedDecimalEncoding) Format(data []byte) string {
	tokens := make([]string, len(data))
	for i, b := range data {
		tokens[i] = mixedDecimalToken(b)
	}
	return strings.Join(tokens, " ")
}

func (mixedDecimalEncoding) Span(data []byte, cursor int) (int, int) {
	return tokenSpan(data, cursor, mixedDecimalToken)
}

func mixedDecimalToken(b byte) string {
	if printableASCII(b) {
		return string(rune(b))
	}
	return strconv.Itoa(int(b))
}
