package hdr

import (
	"encoding/binary"
	"math"
)

const (
	// cookieV2 is the base cookie of the uncompressed V2 encoding. The word
	// size nibble (0xf0) is masked out before comparing.
	cookieV2 = 0x1c849303
	// cookieV2Compressed marks a deflated V2 encoding, which is never written
	// to a log.
	cookieV2Compressed = 0x1c849304
	cookieWordSize     = 0x10
	cookieMask         = ^int32(0xf0)

	// HeaderLen is the fixed size of an encoded histogram before its payload:
	// cookie(int32), payloadLen(int32), normalizingIndexOffset(int32),
	// significantDigits(int32), lowest(int64), highest(int64), ratio(float64).
	HeaderLen = 4 + 4 + 4 + 4 + 8 + 8 + 8
)

type header []byte

func (h header) Cookie() int32 {
	return int32(binary.BigEndian.Uint32(h[0:4]))
}

func (h header) SetCookie(c int32) {
	binary.BigEndian.PutUint32(h[0:4], uint32(c))
}

func (h header) PayloadLen() int32 {
	return int32(binary.BigEndian.Uint32(h[4:8]))
}

func (h header) SetPayloadLen(n int32) {
	binary.BigEndian.PutUint32(h[4:8], uint32(n))
}

func (h header) NormalizingIndexOffset() int32 {
	return int32(binary.BigEndian.Uint32(h[8:12]))
}

func (h header) SetNormalizingIndexOffset(off int32) {
	binary.BigEndian.PutUint32(h[8:12], uint32(off))
}

func (h header) SignificantDigits() int32 {
	return int32(binary.BigEndian.Uint32(h[12:16]))
}

func (h header) SetSignificantDigits(d int32) {
	binary.BigEndian.PutUint32(h[12:16], uint32(d))
}

func (h header) Lowest() int64 {
	return int64(binary.BigEndian.Uint64(h[16:24]))
}

func (h header) SetLowest(v int64) {
	binary.BigEndian.PutUint64(h[16:24], uint64(v))
}

func (h header) Highest() int64 {
	return int64(binary.BigEndian.Uint64(h[24:32]))
}

func (h header) SetHighest(v int64) {
	binary.BigEndian.PutUint64(h[24:32], uint64(v))
}

func (h header) Ratio() float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(h[32:40]))
}

func (h header) SetRatio(r float64) {
	binary.BigEndian.PutUint64(h[32:40], math.Float64bits(r))
}
