package histoopts

import "go.uber.org/zap"

type optionLogger struct {
	v *zap.Logger
}

// Logger sets the logger. Readers and tailers log nothing by default.
func Logger(v *zap.Logger) Option {
	return &optionLogger{
		v: v,
	}
}

func (o *optionLogger) Type() OptionType {
	return TypeLogger
}

func (o *optionLogger) Value() interface{} {
	return o.v
}
