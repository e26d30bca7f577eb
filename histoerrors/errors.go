package histoerrors

import "errors"

var (
	ErrNotFound   = errors.New("log file not found")
	ErrIOFailure  = errors.New("log file i/o failure")
	ErrCorruptLog = errors.New("corrupt log")
	ErrTruncated  = errors.New("sample truncated before its last record") // strict mode only
	ErrNeedMore   = errors.New("need more bytes to decode")
	ErrClosed     = errors.New("log already closed")
)
