// Command onebrc aggregates a station;temperature measurements file into
// per-station min/mean/max, printed as a single sorted, brace-delimited
// line. The CLI surface and its thin-main-over-a-library-Run shape mirror
// the teacher's own src/go/main.go: parse flags, build a config struct,
// call into the package that does the real work, report errors to stderr.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/onebrc/onebrc/internal/dump"
	"github.com/onebrc/onebrc/internal/pipeline"
	"github.com/onebrc/onebrc/internal/report"
	"github.com/onebrc/onebrc/internal/resultlog"
	"github.com/onebrc/onebrc/internal/runstats"
	"github.com/onebrc/onebrc/internal/server"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("onebrc", flag.ContinueOnError)
	var (
		pgo         = fs.Bool("pgo", false, "run the pipeline 10 times in-process, for profile collection")
		nothreads   = fs.Bool("nothreads", false, "run every range on the caller goroutine sequentially")
		verbose     = fs.Bool("verbose", false, "log ingest progress (bytes done across all workers)")
		verboseV    = fs.Bool("v", false, "shorthand for --verbose")
		showTime    = fs.Bool("time", false, "append an \"Elapsed in <ms> ms\" line")
		showTimeT   = fs.Bool("t", false, "shorthand for --time")
		forceMmap   = fs.Bool("mmap", false, "force the memory-mapped read strategy")
		forceNoMmap = fs.Bool("nommap", false, "force the positional-read strategy")
		workers     = fs.Int("workers", 0, "override the computed worker count (0 = policy default)")
		dumpPath    = fs.String("dump", "", "write the merged table to PATH in lz4-compressed binary form")
		logPath     = fs.String("log", "", "append the formatted result line to PATH under an exclusive lock")
		servePath   = fs.String("serve", "", "listen on a Unix domain socket instead of running once")
		strict      = fs.Bool("strict", false, "validate dataset assumptions off the hot path and reject violations")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *servePath != "" {
		if err := server.Serve(context.Background(), *servePath, logger); err != nil {
			fmt.Fprintf(os.Stderr, "onebrc: %v\n", err)
			return 1
		}
		return 0
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: onebrc <measurements_path> [flags]")
		return 2
	}
	path := fs.Arg(0)
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "onebrc: %v\n", err)
		return 1
	}

	cfg := pipeline.Config{
		Path:        path,
		Workers:     *workers,
		NoThreads:   *nothreads,
		ForceMmap:   *forceMmap,
		ForceNoMmap: *forceNoMmap,
		Strict:      *strict,
	}

	runOnce := func() (pipeline.Result, time.Duration, error) {
		var progress *report.Progress
		var reporter *report.Reporter
		if *verbose || *verboseV {
			progress = &report.Progress{}
			if info, err := os.Stat(path); err == nil {
				reporter = report.Start(progress, info.Size(), logger)
			}
		}
		cfg.Progress = progress

		start := time.Now()
		res, err := pipeline.Run(context.Background(), cfg)
		elapsed := time.Since(start)

		if reporter != nil {
			reporter.Stop()
			logger.Info("run complete", slog.String("summary", report.Summary(res.Rows, progress.Bytes(), elapsed)))
		}
		return res, elapsed, err
	}

	iterations := 1
	if *pgo {
		iterations = 10
	}

	var last pipeline.Result
	var lastElapsed time.Duration
	for i := 0; i < iterations; i++ {
		res, elapsed, err := runOnce()
		if err != nil {
			fmt.Fprintf(os.Stderr, "onebrc: %v\n", err)
			return 1
		}
		last, lastElapsed = res, elapsed
	}

	fmt.Println(last.Line)

	if *showTime || *showTimeT {
		fmt.Printf("Elapsed in %d ms\n", lastElapsed.Milliseconds())
		if hist, err := runstats.Load(path); err == nil {
			_ = hist.Append(runstats.Run{
				Timestamp: time.Now().Format(time.RFC3339),
				Workers:   last.NumWorkers,
				Strategy:  last.Strategy.String(),
				ElapsedMs: lastElapsed.Milliseconds(),
				Rows:      last.Rows,
			})
		}
	}

	if *dumpPath != "" {
		if err := dump.Write(*dumpPath, last.Global); err != nil {
			fmt.Fprintf(os.Stderr, "onebrc: %v\n", err)
			return 1
		}
	}

	if *logPath != "" {
		if err := resultlog.Append(*logPath, last.NumWorkers, last.Line); err != nil {
			fmt.Fprintf(os.Stderr, "onebrc: %v\n", err)
			return 1
		}
	}

	return 0
}
