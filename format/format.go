// Package format renders captured bytes for display. Encodings are
// registered at init time, looked up by name, and cycled in
// registration order.
package format

// Encoding renders a byte sequence as a single display line.
type Encoding interface {
	// Name returns the unique identifier for this encoding (e.g. "hex")
	Name() string

	// Title returns the human-readable name shown in the UI
	Title() string

	// Format renders data as one line
	Format(data []byte) string

	// Span returns the half-open byte range within the formatted line
	// that belongs to the byte at cursor, for highlighting.
	// Out-of-range cursors yield (0, 0).
	Span(data []byte, cursor int) (start, end int)
}

var controlNames = [...]string{
	"NUL", "SOH", "STX", "ETX", "EOT", "ENQ", "ACK", "BEL",
	"BS", "HT", "LF", "VT", "FF", "CR", "SO", "SI",
	"DLE", "DC1", "DC2", "DC3", "DC4", "NAK", "SYN", "ETB",
	"CAN", "EM", "SUB", "ESC", "FS", "GS", "RS", "US",
}

// ControlGlyph names a control byte, e.g. "<NUL>" for 0x00. Control
// bytes beyond the named range render as "< >".
func ControlGlyph(b byte) string {
	if int(b) < len(controlNames) {
		return "<" + controlNames[b] + ">"
	}
	return "< >"
}
