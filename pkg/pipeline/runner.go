package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/planview/planview/pkg/cache"
	"github.com/planview/planview/pkg/errors"
	"github.com/planview/planview/pkg/graph"
	"github.com/planview/planview/pkg/observability"
)

// Runner orchestrates batches against a cache and a worker pool.
//
// The Runner is stateless except for its collaborators - it stores no batch
// results. Multiple goroutines can safely run batches on the same Runner.
type Runner struct {
	Cache  cache.Cache
	Pool   *WorkerPool
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner. A nil cache disables caching via NullCache; a
// nil pool gets default sizing.
func NewRunner(c cache.Cache, pool *WorkerPool, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if pool == nil {
		pool = NewPool(PoolConfig{Logger: logger})
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Pool:   pool,
		Logger: logger,
		TTL:    DefaultCacheTTL,
	}
}

// item is one batch entry after the parse stage.
type item struct {
	index       int
	fingerprint string
	g           *graph.Graph
	err         error // parse failure
}

// RunBatch processes inputs and streams one Record per input on the returned
// channel. Parse failures and cache hits are emitted first, in input order;
// the remaining records arrive as their analyses complete. The channel is
// closed after exactly len(inputs) records unless ctx is cancelled first.
func (r *Runner) RunBatch(ctx context.Context, inputs []string) <-chan Record {
	out := make(chan Record)
	go func() {
		defer close(out)
		r.runBatch(ctx, inputs, out)
	}()
	return out
}

func (r *Runner) runBatch(ctx context.Context, inputs []string, out chan<- Record) {
	batchID := uuid.NewString()
	start := time.Now()
	observability.Batch().OnBatchStart(ctx, batchID, len(inputs))
	r.Logger.Info("batch started", "batch", batchID, "items", len(inputs))

	failures := 0
	emit := func(rec Record) bool {
		if rec.Err != nil {
			failures++
		}
		observability.Batch().OnItemEmitted(ctx, batchID, rec.Index, rec.FromCache, rec.Err)
		select {
		case out <- rec:
			return true
		case <-ctx.Done():
			return false
		}
	}

	// Stage 1: parse and fingerprint everything.
	items := make([]item, len(inputs))
	for i, input := range inputs {
		items[i] = item{index: i}
		g, err := graph.ParseDescription(input)
		if err != nil {
			items[i].err = err
			continue
		}
		items[i].g = g
		items[i].fingerprint = cache.Fingerprint(g)
	}

	// Stage 2: serve parse failures and cache hits in input order, collect
	// the misses grouped by fingerprint so shared graphs are analyzed once.
	missIndexes := make(map[string][]int)
	var missOrder []string
	for _, it := range items {
		if it.err != nil {
			if !emit(Record{Index: it.index, Err: it.err}) {
				return
			}
			continue
		}
		if seen, ok := missIndexes[it.fingerprint]; ok {
			// A duplicate of an earlier miss in this batch rides along
			// with its analysis instead of hitting the cache.
			missIndexes[it.fingerprint] = append(seen, it.index)
			continue
		}

		data, hit, err := r.Cache.Get(ctx, it.fingerprint)
		if err != nil {
			r.Logger.Warn("cache get failed, treating as miss", "batch", batchID, "err", err)
		}
		if hit && json.Valid(data) {
			observability.Cache().OnCacheHit(ctx, it.fingerprint)
			if !emit(Record{Index: it.index, Payload: data, FromCache: true}) {
				return
			}
			continue
		}
		if hit {
			r.Logger.Warn("cache entry is malformed, treating as miss", "batch", batchID, "key", it.fingerprint)
		}
		observability.Cache().OnCacheMiss(ctx, it.fingerprint)
		missIndexes[it.fingerprint] = []int{it.index}
		missOrder = append(missOrder, it.fingerprint)
	}

	// Stage 3: dispatch one task per distinct fingerprint, all before any
	// drain. The results channel holds every outcome so workers never block.
	results := make(chan TaskResult, len(missOrder))
	go func() {
		for _, fp := range missOrder {
			it := items[missIndexes[fp][0]]
			if err := r.Pool.Submit(ctx, Task{Fingerprint: fp, Graph: it.g}, results); err != nil {
				results <- TaskResult{Fingerprint: fp, Err: errors.Wrap(errors.ErrCodeInternal, err, "submitting analysis")}
			}
		}
	}()

	// Stage 4: drain as-completed, writing the cache before fan-out so a
	// concurrent batch can hit on the fresh entry.
	for range missOrder {
		var res TaskResult
		select {
		case res = <-results:
		case <-ctx.Done():
			return
		}

		if res.Err == nil {
			if err := cache.RetryWithBackoff(ctx, func() error {
				return r.Cache.Set(ctx, res.Fingerprint, res.Payload, r.TTL)
			}); err != nil {
				r.Logger.Warn("cache set failed", "batch", batchID, "err", err)
			} else {
				observability.Cache().OnCacheSet(ctx, res.Fingerprint, len(res.Payload))
			}
		}

		for _, idx := range missIndexes[res.Fingerprint] {
			if !emit(Record{Index: idx, Payload: res.Payload, Err: res.Err}) {
				return
			}
		}
	}

	observability.Batch().OnBatchComplete(ctx, batchID, time.Since(start), failures)
	r.Logger.Info("batch finished",
		"batch", batchID,
		"items", len(inputs),
		"failures", failures,
		"duration", time.Since(start))
}
