package report

import (
	"fmt"
	"io"
)

// Writer streams the INI-like report. It holds no state beyond the
// destination; every line is written as produced.
type Writer struct {
	out io.Writer
}

// NewWriter returns a Writer emitting to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Hex renders v as a 0x-prefixed, zero-padded hexadecimal literal. Values
// that fit in 16 bits use 4 digits; anything larger uses 8. Small offsets
// stay compact while addresses remain unambiguous.
func Hex(v uint64) string {
	if v>>16 != 0 {
		return fmt.Sprintf("%#010x", v)
	}
	return fmt.Sprintf("%#06x", v)
}

// Header writes a [name] section header.
func (w *Writer) Header(name string) {
	fmt.Fprintf(w.out, "[%s]\n", name)
}

// Value writes key=<hex> with magnitude-dependent width.
func (w *Writer) Value(key string, v uint64) {
	fmt.Fprintf(w.out, "%s=%s\n", key, Hex(v))
}

// Raw writes key=value verbatim.
func (w *Writer) Raw(key, value string) {
	fmt.Fprintf(w.out, "%s=%s\n", key, value)
}

// Flag writes one ordinal-indexed flag table row pair. Names go between
// plain quotes without escaping; flag values always use the widened
// 8-digit form, unlike scalar report values.
func (w *Writer) Flag(ordinal int, name string, value uint64) {
	fmt.Fprintf(w.out, "%d\\name=\"%s\"\n", ordinal, name)
	fmt.Fprintf(w.out, "%d\\value=%#010x\n", ordinal, value)
}

// Blank terminates a section block.
func (w *Writer) Blank() {
	fmt.Fprint(w.out, "\n")
}
