package histoopts

type optionPrefault struct {
	v bool
}

// Prefault makes the reader populate its mapping when it is established or
// grown. Linux only.
func Prefault(v bool) Option {
	return &optionPrefault{
		v: v,
	}
}

func (o *optionPrefault) Type() OptionType {
	return TypePrefault
}

func (o *optionPrefault) Value() interface{} {
	return o.v
}

type optionStrictTruncation struct {
	v bool
}

// StrictTruncation makes the reader fail with ErrTruncated when a sample has a
// timestamp but the file ends before its last record. By default the reader
// rewinds to the timestamp and retries on the next read, as it does for the
// not-yet-written sentinel.
func StrictTruncation(v bool) Option {
	return &optionStrictTruncation{
		v: v,
	}
}

func (o *optionStrictTruncation) Type() OptionType {
	return TypeStrictTruncation
}

func (o *optionStrictTruncation) Value() interface{} {
	return o.v
}

type optionPreallocate struct {
	v int64
}

// Preallocate makes a writer extend the file with zeros in chunks of v bytes
// ahead of its write position.
func Preallocate(v int64) Option {
	return &optionPreallocate{
		v: v,
	}
}

func (o *optionPreallocate) Type() OptionType {
	return TypePreallocate
}

func (o *optionPreallocate) Value() interface{} {
	return o.v
}
