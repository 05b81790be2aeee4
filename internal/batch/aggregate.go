package batch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"trainload/internal/mmp"
	"trainload/internal/workout"
)

// MMPFanIn computes each session's MMP curve concurrently (workers at a
// time) and folds them into one cross-session best-ever curve via
// mmp.Curve.Merge, which is commutative and associative so partial folds
// can run in any order and still combine correctly (§5's aggregation
// requirement).
func MMPFanIn(ctx context.Context, sessions []*workout.Workout, workers int, durations []int) (mmp.Curve, error) {
	if workers <= 0 {
		workers = 1
	}
	curves := make([]mmp.Curve, len(sessions))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, workers)

	for i, s := range sessions {
		i, s := i, s
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			curves[i] = mmp.ForDurations(s, durations)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return mmp.Curve{}, err
	}
	return mmp.MergeAll(durations, curves), nil
}
