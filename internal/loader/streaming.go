package loader

// streaming.go wraps the raw file reader before it reaches encoding/csv:
//
//   - a leading UTF-8 BOM (0xEF 0xBB 0xBF) is dropped so the first header
//     name is not polluted;
//   - invalid UTF-8 bytes are replaced with '?' without buffering the file;
//   - bytes are counted for the "table loaded" log entry.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM returns a reader positioned after the BOM, if r starts with one.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(utf8BOM))
	if err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// utf8Sanitizer replaces invalid UTF-8 bytes with '?' on the fly. A
// multi-byte rune split across two reads is carried over in pending.
type utf8Sanitizer struct {
	r       io.Reader
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	off := 0
	if len(s.pending) > 0 {
		off = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.r.Read(p[off:])
	n += off
	if n == 0 {
		return 0, err
	}
	if isASCII(p[:n]) {
		return n, err
	}
	return s.sanitize(p[:n], err == io.EOF), err
}

// sanitize rewrites data in place and returns the number of bytes to hand
// to the caller. Unless atEOF, an incomplete trailing rune is held back.
func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	w := 0
	for rd := 0; rd < len(data); {
		if !atEOF && !utf8.FullRune(data[rd:]) {
			s.pending = append(s.pending, data[rd:]...)
			return w
		}
		r, size := utf8.DecodeRune(data[rd:])
		if r == utf8.RuneError && size == 1 {
			data[w] = '?'
			w++
			rd++
			continue
		}
		copy(data[w:], data[rd:rd+size])
		w += size
		rd += size
	}
	return w
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// countingReader tracks how many bytes have been read.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// cleanReader applies BOM skipping, UTF-8 sanitizing, and byte counting,
// in that order.
func cleanReader(r io.Reader) *countingReader {
	return &countingReader{r: newUTF8Sanitizer(skipBOM(r))}
}
