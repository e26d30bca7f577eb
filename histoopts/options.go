package histoopts

type OptionType uint8

const (
	TypeLogger OptionType = iota
	TypePrefault
	TypeStrictTruncation
	TypeDecoder
	TypeClock
	TypeMinIdle
	TypeMaxIdle
	TypeWatch
	TypePreallocate
)

func (t OptionType) String() string {
	switch t {
	case TypeLogger:
		return "logger"
	case TypePrefault:
		return "prefault"
	case TypeStrictTruncation:
		return "strict_truncation"
	case TypeDecoder:
		return "decoder"
	case TypeClock:
		return "clock"
	case TypeMinIdle:
		return "min_idle"
	case TypeMaxIdle:
		return "max_idle"
	case TypeWatch:
		return "watch"
	case TypePreallocate:
		return "preallocate"
	default:
		return "option_unknown"
	}
}

// Option configures a Reader, Tailer or Writer. Each consumer picks the
// option types it understands and ignores the rest.
type Option interface {
	Type() OptionType
	Value() interface{}
}
