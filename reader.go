package histotail

import (
	"errors"
	"fmt"

	"github.com/HdrHistogram/hdrhistogram-go"
	"go.uber.org/zap"

	"github.com/talostrading/histotail/bytes"
	"github.com/talostrading/histotail/codec"
	"github.com/talostrading/histotail/codec/hdr"
	"github.com/talostrading/histotail/histoerrors"
	"github.com/talostrading/histotail/histoopts"
)

// Reader follows a histogram log. It maps the log read-only, parses its header
// once and then decodes samples as the writer appends them.
//
// A Reader must not be used concurrently. Its TimerTable may be.
type Reader struct {
	file    *bytes.MappedFile
	cursor  *bytes.Cursor
	table   *TimerTable
	decoder codec.Decoder[*hdrhistogram.Histogram]
	log     *zap.Logger
	strict  bool

	// Records of the sample being decoded. They are handed out only once the
	// whole sample decoded, so that a sample rewound for lack of data is never
	// delivered twice.
	pending []Record
}

// Open maps the log at path and parses its header.
//
// It fails with ErrNotFound if path does not exist, ErrIOFailure if it cannot
// be mapped and ErrCorruptLog if the header cannot be parsed. On failure
// nothing is left open.
func Open(path string, opts ...histoopts.Option) (*Reader, error) {
	r := &Reader{
		decoder: hdr.NewCodec(),
		log:     zap.NewNop(),
	}

	var (
		prefault bool
		ignored  []histoopts.OptionType
	)
	for _, opt := range opts {
		switch opt.Type() {
		case histoopts.TypeLogger:
			if v := opt.Value().(*zap.Logger); v != nil {
				r.log = v
			}
		case histoopts.TypePrefault:
			prefault = opt.Value().(bool)
		case histoopts.TypeStrictTruncation:
			r.strict = opt.Value().(bool)
		case histoopts.TypeDecoder:
			if v, ok := opt.Value().(codec.Decoder[*hdrhistogram.Histogram]); ok && v != nil {
				r.decoder = v
			}
		default:
			ignored = append(ignored, opt.Type())
		}
	}
	for _, t := range ignored {
		r.log.Debug("ignoring option", zap.Stringer("option", t))
	}

	file, err := bytes.Map(path, prefault)
	if err != nil {
		return nil, err
	}
	r.file = file
	r.cursor = bytes.NewCursor(file)

	r.table, err = parseHeader(r.cursor)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	r.log.Debug("opened histogram log",
		zap.String("path", path),
		zap.Int("timers", r.table.Count()),
		zap.Int("header_len", r.cursor.Offset()),
		zap.Int("size", file.Len()),
	)

	return r, nil
}

// ReadBatch decodes every sample the writer completed since the last call and
// passes their records to handler. It returns the number of samples decoded,
// which is zero when the reader has caught up with the writer.
//
// ReadBatch stops, without error, when fewer than TimestampLen bytes are left
// or when it meets a zero timestamp. In both cases the reader's offset stays
// at the start of the sample it could not decode, so the next call looks at
// the same place again. The same goes for a sample whose records are not all
// in the file yet, unless the reader was opened with StrictTruncation, in
// which case ErrTruncated is returned.
//
// A record the decoder rejects yields ErrCorruptLog. The reader stays at the
// start of the offending sample and remains open for inspection, but further
// calls will fail the same way.
func (r *Reader) ReadBatch(handler Handler) (samples int, err error) {
	if r.file.Closed() {
		return 0, histoerrors.ErrClosed
	}

	grown, err := r.file.Refresh()
	if err != nil {
		return 0, err
	}
	if grown {
		r.log.Debug("remapped histogram log",
			zap.String("path", r.file.Name()),
			zap.Int("size", r.file.Len()),
			zap.Int("offset", r.cursor.Offset()),
		)
	}

	for {
		if r.cursor.Remaining() < TimestampLen {
			return samples, nil
		}

		r.cursor.Mark()
		timestamp, _ := r.cursor.Int64()
		if timestamp == 0 {
			// Reserved by the writer, not written yet.
			r.cursor.Reset()
			return samples, nil
		}

		complete, err := r.decodeSample(timestamp)
		if err != nil {
			r.cursor.Reset()
			return samples, err
		}
		if !complete {
			r.cursor.Reset()
			if r.strict {
				return samples, fmt.Errorf(
					"%w: %s: sample at offset %d timestamp=%d",
					histoerrors.ErrTruncated, r.file.Name(), r.cursor.Offset(), timestamp)
			}
			return samples, nil
		}

		if handler != nil {
			for _, record := range r.pending {
				handler(record)
			}
		}
		samples++
	}
}

// decodeSample decodes the records following a sample's timestamp into
// r.pending. It reports false if the mapping ends before the last record.
func (r *Reader) decodeSample(timestamp int64) (complete bool, err error) {
	r.pending = r.pending[:0]

	for slot := 0; slot < r.table.Count(); slot++ {
		id, err := r.cursor.Int32()
		if errors.Is(err, histoerrors.ErrNeedMore) {
			return false, nil
		}

		src, _ := r.cursor.Peek(r.cursor.Remaining())
		hist, n, err := r.decoder.Decode(src)
		if errors.Is(err, histoerrors.ErrNeedMore) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf(
				"%s: record %d of sample timestamp=%d at offset %d: %w",
				r.file.Name(), slot, timestamp, r.cursor.Offset(), err)
		}
		if err := r.cursor.Advance(n); err != nil {
			return false, fmt.Errorf(
				"%w: %s: decoder consumed %d bytes of %d",
				histoerrors.ErrCorruptLog, r.file.Name(), n, len(src))
		}

		name, ok := r.table.Lookup(id)
		if !ok {
			name = UnresolvedName(id)
			r.log.Debug("record with undeclared timer id",
				zap.Int32("id", id),
				zap.Int64("timestamp", timestamp),
			)
		}

		r.pending = append(r.pending, Record{
			Timestamp: timestamp,
			ID:        id,
			Name:      name,
			Resolved:  ok,
			Histogram: hist,
		})
	}

	return true, nil
}

// Table returns the timers declared in the log header.
func (r *Reader) Table() *TimerTable {
	return r.table
}

// Offset returns the absolute offset of the next sample the reader will
// decode.
func (r *Reader) Offset() int {
	return r.cursor.Offset()
}

// Name returns the path of the log.
func (r *Reader) Name() string {
	return r.file.Name()
}

// Close unmaps the log and closes it. Calling Close more than once returns
// ErrClosed.
func (r *Reader) Close() error {
	return r.file.Close()
}
