package check

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

// Job is one beatmapset to check, named by its source for tracing.
type Job struct {
	Source string
	Set    *beatmap.Set
}

// RunSets checks independent sets in parallel, at most jobs at a time
// (GOMAXPROCS when jobs <= 0). Results are returned in input order.
func (d *Dispatcher) RunSets(ctx context.Context, sets []Job, jobs int) ([]*issue.Bag, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	// indices are unique per goroutine, no mutex needed
	results := make([]*issue.Bag, len(sets))
	if len(sets) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(sets)))
	for i, job := range sets {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = d.Collect(job.Source, job.Set)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
