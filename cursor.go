package spl

import (
	"bufio"
	"io"
	"os"
)

// cursorBufferSize matches the scale of the scanner buffer in the
// original bootstrap compiler (an on-stack 1KB iobuffer); bufio gives
// us the same effect without hand-rolled refill logic.
const cursorBufferSize = 1024

// Cursor is a buffered byte reader over a single source file. It owns
// the underlying file handle and tracks the position of the scan head
// in three coordinates: a 0-based line number, the byte offset of the
// start of the current line, and the byte offset of the byte under the
// cursor (the count of bytes consumed so far). End of input is reported as the sentinel byte 0,
// mirroring the NUL-terminated C convention the rest of the front end
// assumes.
type Cursor struct {
	file *os.File
	r    *bufio.Reader

	cc byte // byte under the cursor; 0 at EOF

	line       uint32
	lineOffset uint32
	byteOffset uint32
}

// OpenCursor opens path and primes the cursor so Peek immediately
// reflects the first byte of the file.
func OpenCursor(path string) (*Cursor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	c := &Cursor{
		file: f,
		r:    bufio.NewReaderSize(f, cursorBufferSize),
	}
	c.readNext()
	return c, nil
}

// Close releases the underlying file handle. Reopening a Cursor is
// not supported; callers construct a fresh one via OpenCursor and
// Close the previous one themselves.
func (c *Cursor) Close() error {
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}

func (c *Cursor) readNext() {
	b, err := c.r.ReadByte()
	if err != nil {
		if err != io.EOF {
			// Treat any read error as end of input; the scanner has
			// no way to surface I/O errors mid-token and the spec
			// models EOF as the only sentinel.
		}
		c.cc = 0
		return
	}
	c.cc = b
}

// Peek returns the byte under the cursor without consuming it, or 0
// at end of input.
func (c *Cursor) Peek() byte {
	return c.cc
}

// Advance consumes and returns the byte under the cursor, then
// refills the lookahead. Advancing past EOF repeatedly is safe and
// keeps returning 0.
func (c *Cursor) Advance() byte {
	b := c.cc
	if b == 0 {
		return 0
	}
	c.byteOffset++
	if b == '\n' {
		c.line++
		c.lineOffset = c.byteOffset
	}
	c.readNext()
	return b
}

// Line returns the 0-based line number of the byte under the cursor,
// i.e. the number of newlines consumed so far.
func (c *Cursor) Line() uint32 { return c.line }

// LineOffset returns the byte offset of the start of the current
// line.
func (c *Cursor) LineOffset() uint32 { return c.lineOffset }

// ByteOffset returns the byte offset of the byte under the cursor,
// i.e. the number of bytes consumed so far.
func (c *Cursor) ByteOffset() uint32 { return c.byteOffset }
