// Package report logs the optional --verbose ingest progress, grounded on
// the teacher's Indexer.startReporting/printStatus in
// internal/indexer/indexer.go: a ticker goroutine emits one slog record
// per second with bytes done, percent, byte rate and elapsed time. The
// progress counter is a single total across all workers (there is no
// per-worker breakdown); workers add to it atomically, off the hot path,
// once each finishes its range, and the reporter reads it atomically.
package report

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Progress is a shared, per-run counter of bytes processed so far,
// written by workers and read by the reporter. It is safe for concurrent
// use; workers add to it with AddBytes.
type Progress struct {
	bytesDone int64
}

func (p *Progress) AddBytes(n int64) {
	atomic.AddInt64(&p.bytesDone, n)
}

func (p *Progress) Bytes() int64 {
	return atomic.LoadInt64(&p.bytesDone)
}

// Reporter periodically logs Progress against a known total file size
// until Stop is called.
type Reporter struct {
	progress  *Progress
	totalSize int64
	logger    *slog.Logger
	stop      chan struct{}
	done      chan struct{}
}

// Start launches a reporter logging once per second. It always starts
// the goroutine; callers gate construction on --verbose themselves.
func Start(progress *Progress, totalSize int64, logger *slog.Logger) *Reporter {
	r := &Reporter{
		progress:  progress,
		totalSize: totalSize,
		logger:    logger,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Reporter) run() {
	defer close(r.done)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	start := time.Now()

	for {
		select {
		case <-ticker.C:
			r.logOnce(start)
		case <-r.stop:
			return
		}
	}
}

func (r *Reporter) logOnce(start time.Time) {
	done := r.progress.Bytes()
	elapsed := time.Since(start)
	rate := float64(done) / elapsed.Seconds()

	pct := 0.0
	if r.totalSize > 0 {
		pct = 100 * float64(done) / float64(r.totalSize)
	}

	r.logger.Info("ingest progress",
		slog.Float64("percent", pct),
		slog.Int64("bytes_done", done),
		slog.Int64("bytes_total", r.totalSize),
		slog.Float64("bytes_per_sec", rate),
		slog.Duration("elapsed", elapsed.Round(time.Millisecond)),
	)
}

// Stop halts the reporter goroutine and blocks until it has exited.
func (r *Reporter) Stop() {
	close(r.stop)
	<-r.done
}

// Summary formats a final one-line human-readable throughput summary,
// in the shape of the teacher's end-of-run Statistics block in Run().
func Summary(rows uint64, bytes int64, elapsed time.Duration) string {
	rate := float64(rows) / elapsed.Seconds()
	return fmt.Sprintf("rows=%d bytes=%d elapsed=%s rate=%.0f rows/sec", rows, bytes, elapsed.Round(time.Millisecond), rate)
}
