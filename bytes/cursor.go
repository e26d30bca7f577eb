package bytes

import (
	"encoding/binary"

	"github.com/talostrading/histotail/histoerrors"
)

// Cursor reads big-endian values from a MappedFile at an absolute offset.
//
// The offset only moves forward, except through Reset which rewinds it to the
// last Mark. Since the offset is absolute, a Refresh of the underlying
// MappedFile never changes the logical position of the cursor; it can only
// increase Remaining.
//
// Each reader of a log owns its Cursor. Cursors are not safe for concurrent
// use.
type Cursor struct {
	m    *MappedFile
	off  int // Always smaller or equal to m.Len().
	mark int
}

func NewCursor(m *MappedFile) *Cursor {
	return &Cursor{m: m}
}

// Offset returns the absolute offset of the next byte to be read.
func (c *Cursor) Offset() int {
	return c.off
}

// Remaining returns the number of mapped bytes after the offset.
func (c *Cursor) Remaining() int {
	return c.m.Len() - c.off
}

// Mark records the current offset so that a subsequent Reset can return to it.
func (c *Cursor) Mark() {
	c.mark = c.off
}

// Reset rewinds the offset to the last Mark.
func (c *Cursor) Reset() {
	c.off = c.mark
}

// Peek returns the next n bytes without advancing. It returns ErrNeedMore if
// fewer than n bytes are mapped. The returned slice aliases the mapping and
// must not be retained past the next Refresh.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, histoerrors.ErrNeedMore
	}
	return c.m.Bytes()[c.off : c.off+n], nil
}

// Advance moves the offset n bytes forward.
func (c *Cursor) Advance(n int) error {
	if n < 0 || c.Remaining() < n {
		return histoerrors.ErrNeedMore
	}
	c.off += n
	return nil
}

// Next returns the next n bytes and advances past them.
func (c *Cursor) Next(n int) ([]byte, error) {
	b, err := c.Peek(n)
	if err == nil {
		c.off += n
	}
	return b, err
}

func (c *Cursor) Int32() (int32, error) {
	b, err := c.Next(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (c *Cursor) Int64() (int64, error) {
	b, err := c.Next(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}
