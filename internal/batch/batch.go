// Package batch implements the worker-pool concurrency model described in
// spec.md §5: bounded-queue fan-out over files for decoding, and
// commutative/associative fan-in for cross-session MMP aggregation (MMP
// max). PMC recomputation is not parallelized by this package.
package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"trainload/internal/fitdecode"
	"trainload/internal/store"
)

// DecodeJob names one file to decode.
type DecodeJob struct {
	Path string
}

// DecodeResult pairs a job with its outcome.
type DecodeResult struct {
	Path   string
	Result *fitdecode.Result
	Err    error
}

// DecodeAll runs workers goroutines over jobs, each reading and
// decoding one file via open, with a bounded input queue of 2x the worker
// count (§5's "bounded queue" requirement) so that slow consumers apply
// backpressure to the producer instead of buffering every job up front.
// Cancellation is checked between files.
func DecodeAll(ctx context.Context, jobs []DecodeJob, workers int, open func(path string) (*fitdecode.Result, error)) ([]DecodeResult, error) {
	if workers <= 0 {
		workers = 1
	}
	queue := make(chan DecodeJob, workers*2)
	results := make([]DecodeResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(queue)
		for _, j := range jobs {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case queue <- j:
			}
		}
		return nil
	})

	indices := make(map[string]int, len(jobs))
	for i, j := range jobs {
		indices[j.Path] = i
	}

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for job := range queue {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				res, err := open(job.Path)
				results[indices[job.Path]] = DecodeResult{Path: job.Path, Result: res, Err: err}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("batch: decode: %w", err)
	}
	return results, nil
}

// SessionCacheFactory returns a fresh bounded cache sized for workers
// concurrent decoders sharing one cache, per §5.
func SessionCacheFactory(workers int) *store.SessionCache {
	capacity := workers * 2
	if capacity <= 0 {
		capacity = 2
	}
	return store.NewSessionCache(capacity)
}
