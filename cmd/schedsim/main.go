// Command schedsim runs the batch scheduler simulator described by
// SPEC_FULL.md: it parses a tab-separated job file, drives a
// sched.Scheduler under the chosen policy to completion, and renders
// scheduler.log, memory.log, and scheduler.perf.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/opslab/schedsim/ioformat"
	"github.com/opslab/schedsim/sched"
	"github.com/opslab/schedsim/simerr"
)

const (
	defaultTotalMemory = 1024
	defaultMinBlock    = 16
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := newLogger()

	fs := flag.NewFlagSet("schedsim", flag.ContinueOnError)
	policyFlag := fs.String("s", "", "scheduling policy: rr, hpf, or srtn (required)")
	fileFlag := fs.String("f", "", "tab-separated process file (required)")
	quantumFlag := fs.Int("q", 0, "RR time quantum (required for -s rr, ignored otherwise)")
	totalMemFlag := fs.Int("m", defaultTotalMemory, "total arena bytes (power of two)")
	minBlockFlag := fs.Int("b", defaultMinBlock, "minimum allocator block bytes (power of two)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	policy, err := sched.ParsePolicy(*policyFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return 2
	}
	if *fileFlag == "" {
		fmt.Fprintln(os.Stderr, "schedsim: -f is required")
		fs.Usage()
		return 2
	}
	if policy == sched.RR && *quantumFlag <= 0 {
		fmt.Fprintln(os.Stderr, "schedsim: -q is required and must be positive for -s rr")
		fs.Usage()
		return 2
	}

	in, err := os.Open(*fileFlag)
	if err != nil {
		logger.Error().Err(err).Msg("opening process file")
		return 1
	}
	descs, err := ioformat.ParseDescriptors(in)
	in.Close()
	if err != nil {
		logger.Error().Err(err).Msg("parsing process file")
		return 1
	}

	schedLogFile, err := os.Create("scheduler.log")
	if err != nil {
		logger.Error().Err(err).Msg("creating scheduler.log")
		return 1
	}
	defer schedLogFile.Close()
	memLogFile, err := os.Create("memory.log")
	if err != nil {
		logger.Error().Err(err).Msg("creating memory.log")
		return 1
	}
	defer memLogFile.Close()
	perfFile, err := os.Create("scheduler.perf")
	if err != nil {
		logger.Error().Err(err).Msg("creating scheduler.perf")
		return 1
	}
	defer perfFile.Close()

	sink, err := ioformat.NewLogSink(schedLogFile, memLogFile)
	if err != nil {
		logger.Error().Err(err).Msg("initializing log sink")
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		if _, ok := <-sig; ok {
			logger.Warn().Msg("received shutdown signal")
			cancel()
		}
	}()
	defer signal.Stop(sig)

	s, err := sched.New(sched.Config{
		Policy:      policy,
		Quantum:     *quantumFlag,
		TotalMemory: *totalMemFlag,
		MinBlock:    *minBlockFlag,
		Arrivals:    ioformat.Arrivals(descs),
		Sink:        sink,
		Logger:      logger,
	})
	if err != nil {
		logger.Error().Err(err).Msg("constructing scheduler")
		return 1
	}
	defer s.Close()

	stats, runErr := s.Run(ctx)
	if err := sink.Flush(); err != nil {
		logger.Error().Err(err).Msg("flushing logs")
	}
	if err := ioformat.WritePerf(perfFile, stats); err != nil {
		logger.Error().Err(err).Msg("writing scheduler.perf")
		return 1
	}

	if runErr != nil {
		logger.Error().Err(runErr).Msg("scheduler terminated abnormally")
		if errors.Is(runErr, simerr.ErrExternalSignal) {
			return 130
		}
		return 1
	}
	return 0
}

// newLogger configures the operational (non-mandated) log stream: a
// human-readable console writer when stderr is a terminal, structured
// JSON otherwise.
func newLogger() zerolog.Logger {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
