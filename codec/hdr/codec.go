// Package hdr implements the uncompressed V2 binary encoding of HdrHistogram
// snapshots, as written by the HdrHistogram Java and C libraries with
// encodeIntoByteBuffer.
//
// An encoded histogram is a fixed 40 byte header (see HeaderLen) followed by
// a payload of counts. Each count is a ZigZag LEB128 varint; a negative value
// -k stands for k consecutive empty buckets. The payload length is part of the
// header, which makes the encoding self-delimiting.
package hdr

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/talostrading/histotail/codec"
	"github.com/talostrading/histotail/histoerrors"
)

var (
	_ codec.Codec[*hdrhistogram.Histogram, *hdrhistogram.Histogram] = &Codec{}

	ErrNegativeCount = errors.New("histogram has a negative bucket count")
)

const (
	MinSignificantDigits = 1
	MaxSignificantDigits = 5

	// maxBucketMagnitude bounds log2 of the first untrackable value of the
	// smallest bucket, which must fit an int64 with room to double.
	maxBucketMagnitude = 62
)

// Codec encodes and decodes *hdrhistogram.Histogram values. It is stateless
// and may be shared.
type Codec struct{}

func NewCodec() *Codec {
	return &Codec{}
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: hdr: %s", histoerrors.ErrCorruptLog, fmt.Sprintf(format, args...))
}

// unitMagnitude is floor(log2(lowest)).
func unitMagnitude(lowest int64) int {
	return bits.Len64(uint64(lowest)) - 1
}

// subBucketCountMagnitude is ceil(log2(2 * 10^digits)).
func subBucketCountMagnitude(digits int32) int {
	largest := int64(2)
	for i := int32(0); i < digits; i++ {
		largest *= 10
	}
	return bits.Len64(uint64(largest - 1))
}

func (c *Codec) Decode(src []byte) (*hdrhistogram.Histogram, int, error) {
	if len(src) < HeaderLen {
		return nil, 0, histoerrors.ErrNeedMore
	}

	h := header(src[:HeaderLen])

	switch cookie := h.Cookie() & cookieMask; cookie {
	case cookieV2:
	case cookieV2Compressed:
		return nil, 0, corrupt("compressed encoding cookie=%#x", h.Cookie())
	default:
		return nil, 0, corrupt("unknown encoding cookie=%#x", h.Cookie())
	}

	payloadLen := int(h.PayloadLen())
	if payloadLen < 0 {
		return nil, 0, corrupt("negative payload length %d", payloadLen)
	}

	if off := h.NormalizingIndexOffset(); off != 0 {
		return nil, 0, corrupt("unsupported normalizing index offset %d", off)
	}

	digits, lowest, highest := h.SignificantDigits(), h.Lowest(), h.Highest()
	if digits < MinSignificantDigits || digits > MaxSignificantDigits {
		return nil, 0, corrupt("significant digits %d out of range", digits)
	}
	if lowest < 1 || highest/2 < lowest {
		return nil, 0, corrupt("invalid trackable range [%d, %d]", lowest, highest)
	}
	if unitMagnitude(lowest)+subBucketCountMagnitude(digits) > maxBucketMagnitude {
		return nil, 0, corrupt("lowest %d too large for %d significant digits", lowest, digits)
	}

	snapshot := hdrhistogram.New(lowest, highest, int(digits)).Export()
	counts := snapshot.Counts

	if payloadLen > len(counts)*maxZigZagLen {
		return nil, 0, corrupt("payload length %d exceeds what %d buckets encode to", payloadLen, len(counts))
	}
	if len(src)-HeaderLen < payloadLen {
		return nil, 0, histoerrors.ErrNeedMore
	}

	payload := src[HeaderLen : HeaderLen+payloadLen]
	index := 0
	for len(payload) > 0 {
		v, n, err := getZigZag(payload)
		if err != nil {
			return nil, 0, corrupt("%v at bucket %d", err, index)
		}
		payload = payload[n:]

		if v < 0 {
			if v < -int64(len(counts)-index) {
				return nil, 0, corrupt("run of %d empty buckets overflows %d buckets", -v, len(counts))
			}
			index += int(-v)
			continue
		}

		if index >= len(counts) {
			return nil, 0, corrupt("payload overflows %d buckets", len(counts))
		}
		counts[index] = v
		index++
	}

	return hdrhistogram.Import(snapshot), HeaderLen + payloadLen, nil
}

func (c *Codec) Encode(hist *hdrhistogram.Histogram, dst []byte) ([]byte, error) {
	s := hist.Export()

	// Trailing empty buckets are implied by the payload ending.
	counts := s.Counts
	for len(counts) > 0 && counts[len(counts)-1] == 0 {
		counts = counts[:len(counts)-1]
	}

	start := len(dst)
	dst = append(dst, make([]byte, HeaderLen)...)

	for i := 0; i < len(counts); {
		count := counts[i]
		i++

		if count < 0 {
			return dst[:start], fmt.Errorf("%w: bucket %d", ErrNegativeCount, i-1)
		}

		if count == 0 {
			zeros := int64(1)
			for i < len(counts) && counts[i] == 0 {
				zeros++
				i++
			}
			if zeros > 1 {
				dst = putZigZag(dst, -zeros)
				continue
			}
		}

		dst = putZigZag(dst, count)
	}

	h := header(dst[start : start+HeaderLen])
	h.SetCookie(cookieV2 | cookieWordSize)
	h.SetPayloadLen(int32(len(dst) - start - HeaderLen))
	h.SetNormalizingIndexOffset(0)
	h.SetSignificantDigits(int32(s.SignificantFigures))
	h.SetLowest(s.LowestTrackableValue)
	h.SetHighest(s.HighestTrackableValue)
	h.SetRatio(1.0)

	return dst, nil
}
