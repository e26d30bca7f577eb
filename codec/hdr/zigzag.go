package hdr

import "errors"

// maxZigZagLen is the longest encoding of an int64: eight 7-bit groups with a
// continuation bit followed by one byte carrying the 8 most significant bits.
const maxZigZagLen = 9

var errZigZagShort = errors.New("zigzag value runs past the payload")

func putZigZag(dst []byte, v int64) []byte {
	u := uint64((v << 1) ^ (v >> 63))
	for i := 0; i < maxZigZagLen-1; i++ {
		if u < 0x80 {
			return append(dst, byte(u))
		}
		dst = append(dst, byte(u&0x7f)|0x80)
		u >>= 7
	}
	return append(dst, byte(u))
}

func getZigZag(src []byte) (v int64, n int, err error) {
	var u uint64
	for i := 0; i < maxZigZagLen; i++ {
		if i >= len(src) {
			return 0, 0, errZigZagShort
		}
		b := src[i]
		if i == maxZigZagLen-1 {
			u |= uint64(b) << 56
			return unZigZag(u), maxZigZagLen, nil
		}
		u |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return unZigZag(u), i + 1, nil
		}
	}
	panic("unreachable")
}

func unZigZag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}
