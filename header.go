package histotail

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/talostrading/histotail/bytes"
	"github.com/talostrading/histotail/histoerrors"
)

// Timer is a header entry: a timer id and its display name.
type Timer struct {
	ID   int32
	Name string
}

// TimerTable maps the timer ids declared in a log header to their names. It
// is built once when a log is opened and never modified afterwards, so it can
// be read from any goroutine.
type TimerTable struct {
	timers []Timer
	names  map[int32]string
}

func newTimerTable(timers []Timer) (*TimerTable, error) {
	t := &TimerTable{
		timers: timers,
		names:  make(map[int32]string, len(timers)),
	}
	for _, timer := range timers {
		if _, ok := t.names[timer.ID]; ok {
			return nil, fmt.Errorf("duplicate timer id %d", timer.ID)
		}
		t.names[timer.ID] = timer.Name
	}
	return t, nil
}

// Count returns the number of timers declared in the header, which is also
// the number of records in every sample.
func (t *TimerTable) Count() int {
	return len(t.timers)
}

// Lookup returns the name declared for id. ok is false if the header does not
// declare id.
func (t *TimerTable) Lookup(id int32) (name string, ok bool) {
	name, ok = t.names[id]
	return
}

// Timers returns the timers in header order.
func (t *TimerTable) Timers() []Timer {
	return append([]Timer(nil), t.timers...)
}

// parseHeader reads the log header starting at the cursor's offset and leaves
// the cursor right after it. Any short read or malformed entry is
// ErrCorruptLog: without a header the samples cannot be decoded.
func parseHeader(c *bytes.Cursor) (*TimerTable, error) {
	corrupt := func(format string, args ...any) error {
		return fmt.Errorf(
			"%w: header at offset %d: %s",
			histoerrors.ErrCorruptLog, c.Offset(), fmt.Sprintf(format, args...))
	}
	short := func(err error) bool {
		return errors.Is(err, histoerrors.ErrNeedMore)
	}

	count, err := c.Int32()
	if short(err) {
		return nil, corrupt("truncated timer count")
	}
	if count < 0 {
		return nil, corrupt("negative timer count %d", count)
	}

	// Every entry takes at least 8 bytes; do not trust count for allocation.
	timers := make([]Timer, 0, min(int(count), c.Remaining()/8))
	for i := 0; i < int(count); i++ {
		id, err := c.Int32()
		if short(err) {
			return nil, corrupt("truncated id of timer %d/%d", i, count)
		}

		n, err := c.Int32()
		if short(err) {
			return nil, corrupt("truncated name length of timer %d/%d", i, count)
		}
		if n < 0 {
			return nil, corrupt("negative name length %d of timer %d/%d", n, i, count)
		}

		b, err := c.Next(int(n))
		if short(err) {
			return nil, corrupt("truncated name of timer %d/%d", i, count)
		}
		if !utf8.Valid(b) {
			return nil, corrupt("name of timer %d/%d is not UTF-8", i, count)
		}

		// string(b) copies out of the mapping, which may be remapped later.
		timers = append(timers, Timer{ID: id, Name: string(b)})
	}

	table, err := newTimerTable(timers)
	if err != nil {
		return nil, corrupt("%v", err)
	}
	return table, nil
}

// appendHeader appends the encoding of a header declaring timers to dst.
func appendHeader(dst []byte, timers []Timer) []byte {
	dst = appendInt32(dst, int32(len(timers)))
	for _, timer := range timers {
		dst = appendInt32(dst, timer.ID)
		dst = appendInt32(dst, int32(len(timer.Name)))
		dst = append(dst, timer.Name...)
	}
	return dst
}

func appendInt32(dst []byte, v int32) []byte {
	return binary.BigEndian.AppendUint32(dst, uint32(v))
}

func appendInt64(dst []byte, v int64) []byte {
	return binary.BigEndian.AppendUint64(dst, uint64(v))
}
