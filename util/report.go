package util

import (
	"fmt"
	"io"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/valyala/bytebufferpool"
)

// Report is the summary of one histogram. All values are divided by the scale
// the report was built with.
type Report struct {
	Name      string
	Timestamp int64 // milliseconds since the epoch

	Mean float64
	P1   float64
	P50  float64
	P90  float64
	P99  float64
	P999 float64
	P100 float64
}

// NewReport summarizes h. scale divides every value, for example 1000 turns a
// histogram recorded in nanoseconds into a report in microseconds. A
// non-positive scale is treated as 1.
func NewReport(timestamp int64, name string, h *hdrhistogram.Histogram, scale float64) Report {
	if scale <= 0 {
		scale = 1
	}
	total := h.TotalCount()
	at := func(pct float64) float64 {
		// The rank of a percentile is at least 1: low percentiles of a
		// histogram with few values are its smallest value, not 0.
		if total > 0 {
			pct = max(pct, 100/float64(total))
		}
		return float64(h.ValueAtPercentile(pct)) / scale
	}
	return Report{
		Name:      name,
		Timestamp: timestamp,
		Mean:      h.Mean() / scale,
		P1:        at(1),
		P50:       at(50),
		P90:       at(90),
		P99:       at(99),
		P999:      at(99.9),
		P100:      at(100),
	}
}

func (r Report) appendTo(b *bytebufferpool.ByteBuffer) {
	fmt.Fprintf(b,
		"%s Histogram @ %dmillis\n"+
			"----------\n"+
			"Mean: %#.6G\n"+
			"1:    %#.6G\n"+
			"50:   %#.6G\n"+
			"90:   %#.6G\n"+
			"99:   %#.6G\n"+
			"99.9: %#.6G\n"+
			"100:  %#.6G\n"+
			"----------\n",
		r.Name, r.Timestamp,
		r.Mean, r.P1, r.P50, r.P90, r.P99, r.P999, r.P100,
	)
}

func (r Report) String() string {
	b := bytebufferpool.Get()
	defer bytebufferpool.Put(b)

	r.appendTo(b)
	return b.String()
}

// WriteTo writes the report with a single Write call.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	b := bytebufferpool.Get()
	defer bytebufferpool.Put(b)

	r.appendTo(b)
	return b.WriteTo(w)
}

// PrettyPrint writes the report of h to w.
func PrettyPrint(w io.Writer, timestamp int64, name string, h *hdrhistogram.Histogram, scale float64) error {
	_, err := NewReport(timestamp, name, h, scale).WriteTo(w)
	return err
}
