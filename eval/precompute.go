package eval

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/on-the-ground/easing_ive_go/easing"
	"github.com/on-the-ground/easing_ive_go/log"
	"github.com/on-the-ground/easing_ive_go/valuecache"
)

// Precompute evaluates req at every sample and stores the results in the value cache.
//
// Samples are spread over all evaluation contexts, each building its own instance.
// req.Progress is ignored. The returned slice is parallel to samples; the error is
// non-nil only when ctx is done or the runtime is closed.
func (r *Runtime) Precompute(ctx context.Context, req easing.Request, samples []float64) ([]easing.Result, error) {
	if r.closed.Load() {
		return nil, easing.ErrRuntimeClosed
	}
	results := make([]easing.Result, len(samples))

	inst, res := r.Bind(ctx, req.Name, req.Args, req.Consumer)
	if !res.OK() {
		if stop(res.Err) {
			return nil, res.Err
		}
		for i := range results {
			results[i] = res
		}
		return results, nil
	}

	n := r.pool.Size()
	g, gctx := errgroup.WithContext(ctx)
	for slot := 0; slot < n; slot++ {
		g.Go(func() error {
			for i := slot; i < len(samples); i += n {
				if err := gctx.Err(); err != nil {
					return err
				}
				p := samples[i]
				entry := r.values.Get(gctx, valuecache.Key{Instance: inst.Key, Progress: p}, func(ctx context.Context) (valuecache.Entry, bool) {
					return r.compute(ctx, slot, inst, p)
				})
				if stop(entry.Err) {
					return entry.Err
				}
				results[i] = entry.Result()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Eff(r.logger, log.LogDebug, "easing table precomputed", map[string]interface{}{
		"instance": string(inst.Key),
		"samples":  len(samples),
		"contexts": n,
	})
	return results, nil
}

func stop(err error) bool {
	return errors.Is(err, easing.ErrRuntimeClosed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
