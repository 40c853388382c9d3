// Package ingest runs the parallel corpus ingestion pipeline: it fans a
// file list out across a bounded worker pool, parses each file, and
// collects records and per-file failures.
package ingest

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/mprosk/enronvault/internal/email"
)

// Options configures an ingestion run.
type Options struct {
	// Workers bounds the parse pool. Defaults to DefaultWorkers().
	Workers int

	// LoadBody controls whether message bodies are decoded.
	LoadBody bool

	// ProgressEvery controls how often (in completions) Progress is
	// invoked. Defaults to 1000. Progress always fires once more at
	// batch end.
	ProgressEvery int64

	// Progress receives completion counts. Called from the coordinator
	// goroutine only. Optional.
	Progress func(done, total int64)

	// Logger is optional; defaults to slog.Default().
	Logger *slog.Logger
}

// Failure records one file that could not be parsed.
type Failure struct {
	Path string
	Err  error
}

// Result holds the outcome of an ingestion run. Records arrive in
// completion order, which is not deterministic across runs; ordering is
// imposed by the store at query time.
type Result struct {
	Records  []email.Record
	Failures []Failure
}

// DefaultWorkers returns the default pool size: min(4, cores).
// Parsing is I/O heavy and the corpus lives on one disk, so more
// workers stop paying off quickly.
func DefaultWorkers() int {
	if n := runtime.NumCPU(); n < 4 {
		return n
	}
	return 4
}

// Run parses every file concurrently and returns the parsed records
// plus the failed paths with reasons. A single file's failure never
// aborts the batch. Cancelling ctx stops submitting new work,
// best-effort-cancels in-flight work, and returns ctx's error; partial
// results are discarded.
func Run(ctx context.Context, files []string, opts Options) (*Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	every := opts.ProgressEvery
	if every <= 0 {
		every = 1000
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	type outcome struct {
		rec  *email.Record
		fail *Failure
	}

	out := make(chan outcome)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	// Submit from a separate goroutine so the coordinator below can
	// drain outcomes while g.Go blocks on the worker limit.
	var waitErr error
	go func() {
		defer close(out)
		for _, path := range files {
			path := path
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				var o outcome
				rec, err := email.ParseFile(path, opts.LoadBody)
				if err != nil {
					o.fail = &Failure{Path: path, Err: err}
				} else {
					o.rec = rec
				}
				select {
				case out <- o:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}
		waitErr = g.Wait()
	}()

	// The coordinator is the sole writer of the result collections.
	res := &Result{}
	total := int64(len(files))
	var done int64
	for o := range out {
		if o.fail != nil {
			log.Warn("failed to parse message",
				"path", o.fail.Path, "error", o.fail.Err)
			res.Failures = append(res.Failures, *o.fail)
		} else {
			res.Records = append(res.Records, *o.rec)
		}
		done++
		if opts.Progress != nil && (done%every == 0 || done == total) {
			opts.Progress(done, total)
		}
	}

	if waitErr != nil {
		return nil, waitErr
	}
	// Submission may have stopped early without any worker observing
	// the cancellation.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
