package histotail

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/talostrading/histotail/codec/hdr"
)

func newHist(values ...int64) *hdrhistogram.Histogram {
	h := hdrhistogram.New(1, 1_000_000, 3)
	for _, v := range values {
		_ = h.RecordValue(v)
	}
	return h
}

// logBuilder lays out log bytes by hand, which lets tests produce logs a
// Writer never would.
type logBuilder struct {
	b []byte
}

func newLogBuilder(timers ...Timer) *logBuilder {
	return &logBuilder{b: appendHeader(nil, timers)}
}

func (l *logBuilder) Timestamp(ts int64) *logBuilder {
	l.b = appendInt64(l.b, ts)
	return l
}

func (l *logBuilder) Record(t *testing.T, id int32, h *hdrhistogram.Histogram) *logBuilder {
	t.Helper()
	l.b = appendInt32(l.b, id)
	var err error
	if l.b, err = hdr.NewCodec().Encode(h, l.b); err != nil {
		t.Fatal(err)
	}
	return l
}

func (l *logBuilder) Zeros(n int) *logBuilder {
	l.b = append(l.b, make([]byte, n)...)
	return l
}

func (l *logBuilder) Raw(b ...byte) *logBuilder {
	l.b = append(l.b, b...)
	return l
}

func (l *logBuilder) Len() int {
	return len(l.b)
}

func (l *logBuilder) Bytes() []byte {
	return l.b
}

func writeFile(t *testing.T, b []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "histograms.log")
	if err := os.WriteFile(path, b, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func appendFile(t *testing.T, path string, b []byte) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		t.Fatal(err)
	}
}

// collect returns a Handler appending to records.
func collect(records *[]Record) Handler {
	return func(r Record) {
		*records = append(*records, r)
	}
}
