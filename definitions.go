package histotail

import (
	"strconv"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// TimestampLen is the size of the timestamp that starts every sample.
	TimestampLen = 8

	// DefaultPreallocate is the chunk by which Writers extend the log ahead of
	// their write position when preallocation is enabled.
	DefaultPreallocate = 1024 * 1024
)

// Record is one histogram of a sample.
type Record struct {
	// Timestamp of the sample in milliseconds since the epoch. Never zero.
	Timestamp int64

	// ID of the timer, as written in the record.
	ID int32

	// Name of the timer from the log header. If the header does not declare
	// ID, Resolved is false and Name is UnresolvedName(ID).
	Name     string
	Resolved bool

	Histogram *hdrhistogram.Histogram
}

// Handler is called once per record, in file order and within a sample in
// header order. Handlers run on the reading goroutine and must not retain the
// Record's Histogram if they modify it.
type Handler func(Record)

// OnHistogram adapts a function taking the timestamp, the timer name and the
// histogram of each record into a Handler.
func OnHistogram(fn func(timestamp int64, name string, h *hdrhistogram.Histogram)) Handler {
	return func(r Record) {
		fn(r.Timestamp, r.Name, r.Histogram)
	}
}

// UnresolvedName is the name given to records whose timer id is missing from
// the log header.
func UnresolvedName(id int32) string {
	return "<unknown:" + strconv.FormatInt(int64(id), 10) + ">"
}
