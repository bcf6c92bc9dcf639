// Package pipeline wires the partitioner, chunk workers, and merger into
// the single end-to-end run the CLI (cmd/onebrc) and the resident server
// (internal/server) both drive. Splitting this out of main.go mirrors the
// teacher's own split between a thin main.go and Indexer.Run in
// internal/indexer/indexer.go: the orchestration is a library call, the
// CLI is flag parsing around it.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/onebrc/onebrc/internal/aggtable"
	"github.com/onebrc/onebrc/internal/merge"
	"github.com/onebrc/onebrc/internal/partition"
	"github.com/onebrc/onebrc/internal/recordscan"
	"github.com/onebrc/onebrc/internal/report"
	"github.com/onebrc/onebrc/internal/worker"
)

// Config controls one run of the pipeline against a single measurements
// file. The zero value runs with the worker-count and strategy policy
// the spec names by default.
type Config struct {
	Path string

	// Workers overrides the §4.D worker-count policy when > 0.
	Workers int
	// NoThreads forces every range onto the caller goroutine, for
	// --nothreads and for result-independent-of-W testing.
	NoThreads bool
	// ForceMmap / ForceNoMmap pin the read strategy; at most one should
	// be set. Neither set means the platform-default selector decides.
	ForceMmap   bool
	ForceNoMmap bool
	// Strict enables the off-hot-path assumption assertions in
	// internal/recordscan/internal/aggtable.
	Strict bool

	// Progress, if non-nil, is advanced by each worker as it consumes
	// bytes, for an --verbose internal/report.Reporter to read.
	Progress *report.Progress
}

// Result is the outcome of one pipeline run.
type Result struct {
	Line       string
	Rows       uint64
	NumWorkers int
	Strategy   partition.Strategy
	// Global is the merged per-station table the line was formatted
	// from, exposed for callers that need the raw accumulators (e.g.
	// --dump) rather than the formatted text.
	Global map[string]*aggtable.Accumulator
}

// Run executes the full D -> C -> B -> A -> E pipeline against cfg.Path
// and returns the formatted result line plus run metadata.
func Run(ctx context.Context, cfg Config) (Result, error) {
	info, err := os.Stat(cfg.Path)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: stat %s: %w", cfg.Path, err)
	}

	ranges, strategy, err := plan(cfg, info.Size())
	if err != nil {
		return Result{}, err
	}
	if len(ranges) == 0 {
		return Result{Line: "{}", Strategy: strategy}, nil
	}

	parser := recordscan.Parser{Strict: cfg.Strict}
	tables, err := runWorkers(ctx, cfg, ranges, strategy, parser)
	if err != nil {
		return Result{}, err
	}
	if len(ranges) == 1 {
		// The sole range is always the "tail" range and always runs
		// positional (see runWorkers), regardless of what ChooseStrategy
		// picked — report what actually happened, not the policy default.
		strategy = partition.StrategyPositional
	}

	global := merge.Global(tables)
	line := merge.Format(global)

	var rows uint64
	for _, acc := range global {
		rows += acc.Count
	}

	return Result{Line: line, Rows: rows, NumWorkers: len(ranges), Strategy: strategy, Global: global}, nil
}

// plan computes the §4.D partitioning: it mmaps the whole file read-only
// purely to locate newline boundaries (the OS only pages in the handful
// of pages the boundary scan actually touches; this never materializes
// the full 13GB file in physical memory), matching the teacher's Scanner,
// which always mmaps the whole input for its own boundary precomputation.
func plan(cfg Config, fileSize int64) ([]partition.Range, partition.Strategy, error) {
	workerCount := partition.WorkerCount(fileSize, cfg.Workers)
	if cfg.NoThreads {
		workerCount = 1
	}

	strategy := partition.ChooseStrategy(cfg.ForceMmap, cfg.ForceNoMmap)

	data, closeData, err := mapWholeFile(cfg.Path, fileSize)
	if err != nil {
		return nil, strategy, err
	}
	defer closeData()

	ranges, err := partition.Build(data, workerCount)
	if err != nil {
		return nil, strategy, err
	}
	return ranges, strategy, nil
}

// runWorkers launches one goroutine per range except the last, which runs
// on the caller goroutine per §4.D ("the last range is always processed
// with positional reads on the caller's thread, because mapping the tail
// and joining late is not profitable"). errgroup reports the first worker
// failure once every worker has returned; the other workers are not
// cancelled, they run to completion, and no tables are returned on error.
// It replaces the teacher's hand-rolled sync.WaitGroup + error channel in
// indexer.go, because this worker group has a single "first error wins"
// semantics that errgroup expresses directly.
func runWorkers(ctx context.Context, cfg Config, ranges []partition.Range, strategy partition.Strategy, parser recordscan.Parser) ([]*aggtable.Table, error) {
	tables := make([]*aggtable.Table, len(ranges))
	tailIdx := len(ranges) - 1

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0) + 1)
	_ = ctx // no cancellation points on the hot path, per the spec's concurrency model

	for i := 0; i < tailIdx; i++ {
		i := i
		g.Go(func() error {
			tbl, err := processOne(cfg, ranges[i], strategy, parser)
			if err != nil {
				return err
			}
			tables[i] = tbl
			return nil
		})
	}

	tbl, tailErr := processOne(cfg, ranges[tailIdx], partition.StrategyPositional, parser)
	waitErr := g.Wait()

	if tailErr != nil {
		return nil, tailErr
	}
	if waitErr != nil {
		return nil, waitErr
	}
	tables[tailIdx] = tbl
	return tables, nil
}

func processOne(cfg Config, r partition.Range, strategy partition.Strategy, parser recordscan.Parser) (*aggtable.Table, error) {
	tbl, err := worker.ProcessRange(cfg.Path, r, strategy, parser)
	if err != nil {
		return nil, err
	}
	if cfg.Progress != nil {
		cfg.Progress.AddBytes(r.End - r.Start)
	}
	return tbl, nil
}
