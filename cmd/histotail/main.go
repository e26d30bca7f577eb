// Command histotail prints the latency histograms recorded in a histogram log,
// following the log as its writer appends to it.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixge/fgprof"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talostrading/histotail"
	"github.com/talostrading/histotail/histoopts"
	"github.com/talostrading/histotail/util"
)

const (
	flagScale     = "scale"
	flagMinIdle   = "min-idle"
	flagMaxIdle   = "max-idle"
	flagWatch     = "watch"
	flagStrict    = "strict"
	flagPrefault  = "prefault"
	flagDebug     = "debug"
	flagPprofAddr = "pprof-addr"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "histotail",
		Usage:     "print the histograms of a histogram log as it grows",
		ArgsUsage: "<logFile>",
		Writer:    os.Stderr,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:  flagScale,
				Value: float64(time.Microsecond / time.Nanosecond),
				Usage: "divide every recorded value by this factor (1000 prints nanoseconds as microseconds)",
			},
			&cli.DurationFlag{
				Name:  flagMinIdle,
				Value: util.DefaultMinIdle,
				Usage: "first sleep after a poll that found no new sample",
			},
			&cli.DurationFlag{
				Name:  flagMaxIdle,
				Value: util.DefaultMaxIdle,
				Usage: "longest sleep between polls",
			},
			&cli.BoolFlag{
				Name:  flagWatch,
				Usage: "wake up on filesystem write notifications for the log",
			},
			&cli.BoolFlag{
				Name:  flagStrict,
				Usage: "fail on a sample cut short instead of waiting for the rest of it",
			},
			&cli.BoolFlag{
				Name:  flagPrefault,
				Usage: "populate the mapping of the log up front (linux)",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "debug logging",
			},
			&cli.StringFlag{
				Name:  flagPprofAddr,
				Usage: "serve a wall-clock profile at http://<addr>/debug/fgprof",
			},
		},
		Action: run,
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		_ = cli.ShowAppHelp(c)
		return cli.Exit("expected exactly one <logFile> argument", 1)
	}
	path := c.Args().First()

	logger, err := newLogger(c.Bool(flagDebug))
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	reader, err := histotail.Open(path,
		histoopts.Logger(logger),
		histoopts.StrictTruncation(c.Bool(flagStrict)),
		histoopts.Prefault(c.Bool(flagPrefault)),
	)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer reader.Close()

	logger.Info("tailing histogram log",
		zap.String("path", path),
		zap.Int("timers", reader.Table().Count()),
	)

	scale := c.Float64(flagScale)
	tailer := histotail.NewTailer(reader,
		histotail.OnHistogram(newPrinter(logger, scale)),
		histoopts.Logger(logger),
		histoopts.MinIdle(c.Duration(flagMinIdle)),
		histoopts.MaxIdle(c.Duration(flagMaxIdle)),
		histoopts.Watch(c.Bool(flagWatch)),
	)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if addr := c.String(flagPprofAddr); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/debug/fgprof", fgprof.Handler())
		srv := &http.Server{Addr: addr, Handler: mux}

		g.Go(func() error {
			logger.Info("serving profiles", zap.String("addr", addr))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		return tailer.Run(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return cli.Exit(err, 1)
	}
	return nil
}
