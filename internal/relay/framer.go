package relay

import (
	"bytes"
	"strings"
)

// Framer splits an arbitrarily-chunked byte stream into protocol lines.
// It keeps any trailing partial line buffered until the delimiter arrives,
// so the sequence of lines produced is independent of how the transport
// fragments the stream.
type Framer struct {
	buf []byte
}

// NewFramer creates an empty Framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Feed appends a chunk and returns every complete line it unlocked, in
// order. Lines are trimmed of surrounding whitespace; lines that are empty
// after trimming are dropped. Invalid UTF-8 is replaced, never fatal.
func (f *Framer) Feed(chunk []byte) []string {
	f.buf = append(f.buf, chunk...)

	var lines []string
	for {
		i := bytes.IndexByte(f.buf, '\n')
		if i < 0 {
			return lines
		}
		raw := f.buf[:i]
		f.buf = f.buf[i+1:]

		line := cleanLine(raw)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
}

// cleanLine decodes one raw line leniently and trims surrounding
// whitespace. Invalid UTF-8 is replaced rather than rejected.
func cleanLine(raw []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(raw), "�"))
}
