package histoopts

import (
	"time"

	"github.com/benbjohnson/clock"
)

type optionClock struct {
	v clock.Clock
}

func Clock(v clock.Clock) Option {
	return &optionClock{
		v: v,
	}
}

func (o *optionClock) Type() OptionType {
	return TypeClock
}

func (o *optionClock) Value() interface{} {
	return o.v
}

type optionMinIdle struct {
	v time.Duration
}

// MinIdle is the first sleep after a poll that found nothing.
func MinIdle(v time.Duration) Option {
	return &optionMinIdle{
		v: v,
	}
}

func (o *optionMinIdle) Type() OptionType {
	return TypeMinIdle
}

func (o *optionMinIdle) Value() interface{} {
	return o.v
}

type optionMaxIdle struct {
	v time.Duration
}

// MaxIdle bounds the sleep between polls.
func MaxIdle(v time.Duration) Option {
	return &optionMaxIdle{
		v: v,
	}
}

func (o *optionMaxIdle) Type() OptionType {
	return TypeMaxIdle
}

func (o *optionMaxIdle) Value() interface{} {
	return o.v
}

type optionWatch struct {
	v bool
}

// Watch makes a tailer subscribe to filesystem notifications for the log
// file. A write cuts the current idle sleep short.
func Watch(v bool) Option {
	return &optionWatch{
		v: v,
	}
}

func (o *optionWatch) Type() OptionType {
	return TypeWatch
}

func (o *optionWatch) Value() interface{} {
	return o.v
}
