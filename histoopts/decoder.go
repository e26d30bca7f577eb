package histoopts

import (
	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/talostrading/histotail/codec"
)

type optionDecoder struct {
	v codec.Decoder[*hdrhistogram.Histogram]
}

// Decoder replaces the histogram record decoder, which defaults to the HDR V2
// codec.
func Decoder(v codec.Decoder[*hdrhistogram.Histogram]) Option {
	return &optionDecoder{
		v: v,
	}
}

func (o *optionDecoder) Type() OptionType {
	return TypeDecoder
}

func (o *optionDecoder) Value() interface{} {
	return o.v
}
