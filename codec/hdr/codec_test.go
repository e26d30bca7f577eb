package hdr

import (
	"errors"
	"math"
	"testing"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talostrading/histotail/histoerrors"
)

func newHist(values ...int64) *hdrhistogram.Histogram {
	h := hdrhistogram.New(1, 3_600_000_000, 3)
	for _, v := range values {
		_ = h.RecordValue(v)
	}
	return h
}

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec()

	h := newHist()
	for i := int64(1); i <= 10_000; i++ {
		_ = h.RecordValue(i * 37)
	}

	b, err := codec.Encode(h, nil)
	require.NoError(t, err)

	decoded, n, err := codec.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, len(b), n)

	assert.Equal(t, h.Export(), decoded.Export())
	assert.Equal(t, h.TotalCount(), decoded.TotalCount())
	assert.Equal(t, h.Mean(), decoded.Mean())
	for _, pct := range []float64{1, 50, 90, 99, 99.9, 100} {
		assert.Equal(t, h.ValueAtPercentile(pct), decoded.ValueAtPercentile(pct))
	}
}

func TestCodecSelfDelimiting(t *testing.T) {
	codec := NewCodec()

	first, err := codec.Encode(newHist(1, 1000, 1_000_000), nil)
	require.NoError(t, err)
	both, err := codec.Encode(newHist(42), first)
	require.NoError(t, err)

	h1, n1, err := codec.Decode(both)
	require.NoError(t, err)
	assert.Equal(t, len(first), n1)
	assert.Equal(t, int64(3), h1.TotalCount())

	h2, n2, err := codec.Decode(both[n1:])
	require.NoError(t, err)
	assert.Equal(t, len(both), n1+n2)
	assert.Equal(t, int64(42), h2.ValueAtPercentile(100))
}

func TestCodecEmptyHistogram(t *testing.T) {
	codec := NewCodec()

	b, err := codec.Encode(newHist(), nil)
	require.NoError(t, err)
	assert.Len(t, b, HeaderLen)
	assert.Equal(t, int32(0), header(b).PayloadLen())

	h, n, err := codec.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, HeaderLen, n)
	assert.Equal(t, int64(0), h.TotalCount())
}

func TestCodecHeader(t *testing.T) {
	b, err := NewCodec().Encode(hdrhistogram.New(10, 1_000_000, 2), nil)
	require.NoError(t, err)

	h := header(b)
	assert.Equal(t, int32(0x1c849313), h.Cookie())
	assert.Equal(t, int32(0), h.NormalizingIndexOffset())
	assert.Equal(t, int32(2), h.SignificantDigits())
	assert.Equal(t, int64(10), h.Lowest())
	assert.Equal(t, int64(1_000_000), h.Highest())
	assert.Equal(t, 1.0, h.Ratio())
}

func TestCodecNeedMore(t *testing.T) {
	codec := NewCodec()

	b, err := codec.Encode(newHist(5, 500, 50_000), nil)
	require.NoError(t, err)

	for i := 0; i < len(b); i++ {
		_, n, err := codec.Decode(b[:i])
		if !errors.Is(err, histoerrors.ErrNeedMore) {
			t.Fatalf("expected ErrNeedMore with %d/%d bytes got %v", i, len(b), err)
		}
		if n != 0 {
			t.Fatal("nothing should be consumed")
		}
	}
}

func TestCodecCorrupt(t *testing.T) {
	codec := NewCodec()

	valid, err := codec.Encode(newHist(5, 500, 50_000), nil)
	require.NoError(t, err)

	tests := map[string]func(h header){
		"zero cookie":        func(h header) { h.SetCookie(0) },
		"compressed cookie":  func(h header) { h.SetCookie(cookieV2Compressed | cookieWordSize) },
		"negative payload":   func(h header) { h.SetPayloadLen(-1) },
		"normalizing offset": func(h header) { h.SetNormalizingIndexOffset(3) },
		"zero digits":        func(h header) { h.SetSignificantDigits(0) },
		"too many digits":    func(h header) { h.SetSignificantDigits(6) },
		"zero lowest":        func(h header) { h.SetLowest(0) },
		"highest too small":  func(h header) { h.SetHighest(h.Lowest()) },
		"range overflows": func(h header) {
			h.SetSignificantDigits(1)
			h.SetLowest(1 << 62)
			h.SetHighest(math.MaxInt64)
		},
		"lowest too large": func(h header) {
			h.SetSignificantDigits(5)
			h.SetLowest(1 << 58)
			h.SetHighest(math.MaxInt64)
		},
		"oversized payload": func(h header) { h.SetPayloadLen(math.MaxInt32) },
	}

	for name, corrupt := range tests {
		t.Run(name, func(t *testing.T) {
			b := append([]byte(nil), valid...)
			corrupt(header(b))

			_, _, err := codec.Decode(b)
			assert.ErrorIs(t, err, histoerrors.ErrCorruptLog)
		})
	}
}

func TestCodecOversizedPayloadWithShortInput(t *testing.T) {
	codec := NewCodec()

	b, err := codec.Encode(newHist(5, 500, 50_000), nil)
	require.NoError(t, err)

	// Only a few payload bytes are present; a valid length would ask for more.
	header(b).SetPayloadLen(math.MaxInt32)
	_, _, err = codec.Decode(b[:HeaderLen+2])
	assert.ErrorIs(t, err, histoerrors.ErrCorruptLog)
}

func TestCodecPayloadOverflow(t *testing.T) {
	codec := NewCodec()

	// A histogram tracking up to 10 has far fewer buckets than one tracking
	// up to an hour; the payload of the latter does not fit the former.
	b, err := codec.Encode(newHist(3_000_000_000), nil)
	require.NoError(t, err)
	header(b).SetHighest(10)

	_, _, err = codec.Decode(b)
	assert.ErrorIs(t, err, histoerrors.ErrCorruptLog)
}

func TestCodecTruncatedVarint(t *testing.T) {
	codec := NewCodec()

	b, err := codec.Encode(newHist(), nil)
	require.NoError(t, err)

	// A continuation bit on the last payload byte.
	b = append(b, 0x80)
	header(b).SetPayloadLen(1)

	_, _, err = codec.Decode(b)
	assert.ErrorIs(t, err, histoerrors.ErrCorruptLog)
}

func TestCodecRejectsNegativeCounts(t *testing.T) {
	s := newHist(1).Export()
	s.Counts[1] = -5

	dst := []byte("prefix")
	out, err := NewCodec().Encode(hdrhistogram.Import(s), dst)
	assert.ErrorIs(t, err, ErrNegativeCount)
	assert.Equal(t, "prefix", string(out))
}

func BenchmarkCodecDecode(b *testing.B) {
	codec := NewCodec()

	h := newHist()
	for i := int64(1); i <= 100_000; i++ {
		_ = h.RecordValue(i * 997)
	}
	encoded, err := codec.Encode(h, nil)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := codec.Decode(encoded); err != nil {
			b.Fatal(err)
		}
	}
}

// javaEncoded is Histogram(1, 3_600_000_000, 3) holding 1 once, 5 twice and
// 3000 300 times, as written by HdrHistogram's encodeIntoByteBuffer.
var javaEncoded = []byte{
	0x1c, 0x84, 0x93, 0x13, // cookie
	0x00, 0x00, 0x00, 0x08, // payload length
	0x00, 0x00, 0x00, 0x00, // normalizing index offset
	0x00, 0x00, 0x00, 0x03, // significant digits
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, // lowest
	0x00, 0x00, 0x00, 0x00, 0xd6, 0x93, 0xa4, 0x00, // highest
	0x3f, 0xf0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // int to double ratio

	0x00,       // index 0: one empty bucket
	0x02,       // index 1: 1
	0x05,       // index 2-4: run of 3 empty buckets
	0x04,       // index 5: 2
	0xab, 0x27, // index 6-2523: run of 2518 empty buckets
	0xd8, 0x04, // index 2524 (3000): 300
}

func TestCodecDecodesJavaEncoding(t *testing.T) {
	codec := NewCodec()

	assert.Equal(t, int32(0x1c849313), header(javaEncoded).Cookie())

	h, n, err := codec.Decode(javaEncoded)
	require.NoError(t, err)
	assert.Equal(t, len(javaEncoded), n)

	assert.Equal(t, int64(303), h.TotalCount())
	assert.Equal(t, int64(1), h.Min())
	assert.Equal(t, int64(1), h.CountAtValue(1))
	assert.Equal(t, int64(2), h.CountAtValue(5))
	assert.Equal(t, int64(300), h.CountAtValue(3000))
	assert.True(t, h.ValuesAreEquivalent(3000, h.ValueAtPercentile(50)))
	assert.True(t, h.ValuesAreEquivalent(3000, h.Max()))

	// Encoding the same histogram yields the same bytes.
	expected := newHist(1, 5, 5)
	require.NoError(t, expected.RecordValues(3000, 300))
	b, err := codec.Encode(expected, nil)
	require.NoError(t, err)
	assert.Equal(t, javaEncoded, b)
}
