package main

import (
	"io"
	"os"

	"github.com/HdrHistogram/hdrhistogram-go"
	"go.uber.org/zap"

	"github.com/talostrading/histotail/util"
)

var stdout io.Writer = os.Stdout

func newPrinter(logger *zap.Logger, scale float64) func(int64, string, *hdrhistogram.Histogram) {
	return func(timestamp int64, name string, h *hdrhistogram.Histogram) {
		if err := util.PrettyPrint(stdout, timestamp, name, h, scale); err != nil {
			logger.Warn("could not print histogram", zap.String("name", name), zap.Error(err))
		}
	}
}
