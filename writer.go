package histotail

import (
	"errors"
	"fmt"
	"os"

	"github.com/HdrHistogram/hdrhistogram-go"
	"go.uber.org/multierr"

	"github.com/talostrading/histotail/codec/hdr"
	"github.com/talostrading/histotail/histoerrors"
	"github.com/talostrading/histotail/histoopts"
)

var (
	ErrZeroTimestamp = errors.New("zero timestamp is reserved for unwritten samples")
	ErrTimerCount    = errors.New("histogram count does not match timer count")
)

// Writer appends samples to a histogram log. It is the producer side of
// Reader and is mostly useful to test readers and to simulate writers.
//
// Each sample is written records first and timestamp last, so a Reader never
// sees a nonzero timestamp before the records that follow it.
//
// A Writer must not be used concurrently.
type Writer struct {
	f        *os.File
	codec    *hdr.Codec
	timers   []Timer
	pos      int64 // where the next sample starts
	size     int64 // file size, at least pos
	prealloc int64
	buf      []byte
	closed   bool
}

// CreateWriter creates or truncates the log at path and writes a header
// declaring timers. With Preallocate, the file is extended with zeros ahead of
// the write position.
func CreateWriter(path string, timers []Timer, opts ...histoopts.Option) (*Writer, error) {
	if _, err := newTimerTable(timers); err != nil {
		return nil, err
	}

	w := &Writer{
		codec:  hdr.NewCodec(),
		timers: append([]Timer(nil), timers...),
	}
	for _, opt := range opts {
		if opt.Type() == histoopts.TypePreallocate {
			w.prealloc = opt.Value().(int64)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: could not create %s: %w", histoerrors.ErrIOFailure, path, err)
	}
	w.f = f

	header := appendHeader(nil, w.timers)
	if err := w.writeAt(header, 0); err != nil {
		_ = f.Close()
		return nil, err
	}
	w.pos = int64(len(header))
	w.size = w.pos

	if err := w.reserve(0); err != nil {
		_ = f.Close()
		return nil, err
	}

	return w, nil
}

// Append writes one sample. It takes one histogram per timer, in the order the
// timers were declared.
func (w *Writer) Append(timestamp int64, hists ...*hdrhistogram.Histogram) error {
	if w.closed {
		return histoerrors.ErrClosed
	}
	if timestamp == 0 {
		return ErrZeroTimestamp
	}
	if len(hists) != len(w.timers) {
		return fmt.Errorf("%w: got %d want %d", ErrTimerCount, len(hists), len(w.timers))
	}

	// Timestamp placeholder, written last.
	w.buf = append(w.buf[:0], make([]byte, TimestampLen)...)

	var err error
	for i, h := range hists {
		w.buf = appendInt32(w.buf, w.timers[i].ID)
		if w.buf, err = w.codec.Encode(h, w.buf); err != nil {
			return fmt.Errorf("timer %s: %w", w.timers[i].Name, err)
		}
	}

	n := int64(len(w.buf))
	if err := w.reserve(n); err != nil {
		return err
	}
	if err := w.writeAt(w.buf[TimestampLen:], w.pos+TimestampLen); err != nil {
		return err
	}
	if err := w.writeAt(appendInt64(w.buf[:0], timestamp), w.pos); err != nil {
		return err
	}

	w.pos += n
	if w.pos > w.size {
		w.size = w.pos
	}
	return nil
}

// reserve extends the file with zeros so that at least n bytes past the write
// position exist. It is a no-op without preallocation.
func (w *Writer) reserve(n int64) error {
	if w.prealloc <= 0 || w.pos+n+TimestampLen <= w.size {
		return nil
	}

	size := w.size + w.prealloc
	if need := w.pos + n + TimestampLen; size < need {
		size = need + w.prealloc
	}
	if err := w.f.Truncate(size); err != nil {
		return fmt.Errorf("%w: could not extend %s to %d: %w", histoerrors.ErrIOFailure, w.f.Name(), size, err)
	}
	w.size = size
	return nil
}

func (w *Writer) writeAt(b []byte, off int64) error {
	if _, err := w.f.WriteAt(b, off); err != nil {
		return fmt.Errorf("%w: could not write %s: %w", histoerrors.ErrIOFailure, w.f.Name(), err)
	}
	return nil
}

// Offset returns where the next sample will be written.
func (w *Writer) Offset() int64 {
	return w.pos
}

// Close syncs and closes the log. The zeros preallocated past the last sample
// stay in place.
func (w *Writer) Close() error {
	if w.closed {
		return histoerrors.ErrClosed
	}
	w.closed = true
	return multierr.Combine(w.f.Sync(), w.f.Close())
}
