package codec

type Encoder[Item any] interface {
	// Encode appends the encoding of item to dst and returns the extended
	// slice.
	Encode(item Item, dst []byte) ([]byte, error)
}

type Decoder[Item any] interface {
	// Decode decodes one Item from the front of src.
	//
	// Encodings are self-delimiting: on success, n is the exact number of
	// bytes the item occupied in src and the caller is expected to advance
	// past them.
	//
	// Implementations should return an empty Item and ErrNeedMore if src does
	// not hold a complete item yet.
	Decode(src []byte) (item Item, n int, err error)
}

// Codec defines a generic interface through which one can encode/decode
// items to and from a raw stream of bytes.
type Codec[Enc, Dec any] interface {
	Encoder[Enc]
	Decoder[Dec]
}
