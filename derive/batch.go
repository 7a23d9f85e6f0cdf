package derive

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Batch derives every request, running at most workers derivations at
// once.  All requests are validated before any stretching starts.  The
// first failure cancels the requests that have not started yet, and is
// returned once the running ones finish.  Each derivation allocates its
// own pool.
func (d *Deriver) Batch(ctx context.Context, reqs []Request, workers int) ([]string, error) {
	for i, req := range reqs {
		if err := req.Validate(); err != nil {
			return nil, batchError{index: i, site: req.Site, err: err}
		}
	}
	if workers < 1 {
		workers = 1
	}

	out := make([]string, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range reqs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pw, err := d.Derive(reqs[i])
			if err != nil {
				return batchError{index: i, site: reqs[i].Site, err: err}
			}
			out[i] = pw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type batchError struct {
	index int
	site  string
	err   error
}

func (e batchError) Error() string {
	return fmt.Sprintf("entry #%d (%s): %s", e.index+1, e.site, e.err)
}

func (e batchError) Unwrap() error {
	return e.err
}
