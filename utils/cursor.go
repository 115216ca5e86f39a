package utils

import (
	"fmt"
	"io"
)

// Cursor is a forward-only reader over an immutable byte buffer.
// Every read returns a sub-slice of the buffer; nothing is copied.
type Cursor struct {
	data []byte
	idx  int
}

func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Advance returns the next n bytes and moves past them. On a short buffer the
// offset is left unchanged and the error wraps io.ErrUnexpectedEOF.
func (c *Cursor) Advance(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, fmt.Errorf("need %d bytes at offset %d, have %d: %w",
			n, c.idx, c.Remaining(), io.ErrUnexpectedEOF)
	}
	c.idx += n
	return c.data[c.idx-n : c.idx : c.idx], nil
}

// Uint32 reads a big-endian uint32.
func (c *Cursor) Uint32() (uint32, error) {
	b, err := c.Advance(4)
	if err != nil {
		return 0, err
	}
	return BytesToLength(b), nil
}

func (c *Cursor) Pos() int {
	return c.idx
}

func (c *Cursor) Remaining() int {
	return len(c.data) - c.idx
}

func (c *Cursor) Len() int {
	return len(c.data)
}
