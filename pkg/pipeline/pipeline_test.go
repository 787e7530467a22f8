package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/planview/planview/pkg/analysis"
	"github.com/planview/planview/pkg/cache"
	"github.com/planview/planview/pkg/errors"
	"github.com/planview/planview/pkg/graph"
)

const (
	k4 = "a - b; a - c; a - d; b - c; b - d; c - d"
	k5 = "a - b; a - c; a - d; a - e; b - c; b - d; b - e; c - d; c - e; d - e"
)

func collect(t *testing.T, ch <-chan Record) []Record {
	t.Helper()
	var recs []Record
	for rec := range ch {
		recs = append(recs, rec)
	}
	return recs
}

// checkComplete verifies the batch protocol: exactly n records covering the
// indices 0..n-1 with no duplicates.
func checkComplete(t *testing.T, recs []Record, n int) {
	t.Helper()
	if len(recs) != n {
		t.Fatalf("got %d records, want %d", len(recs), n)
	}
	seen := make(map[int]bool, n)
	for _, rec := range recs {
		if rec.Index < 0 || rec.Index >= n {
			t.Errorf("index %d out of range [0, %d)", rec.Index, n)
		}
		if seen[rec.Index] {
			t.Errorf("index %d emitted twice", rec.Index)
		}
		seen[rec.Index] = true
	}
}

func newTestRunner(t *testing.T, c cache.Cache, analyze AnalyzeFunc) *Runner {
	t.Helper()
	pool := NewPool(PoolConfig{Workers: 2, Analyze: analyze})
	t.Cleanup(pool.Close)
	return NewRunner(c, pool, nil)
}

func TestRunBatchCompleteness(t *testing.T) {
	r := newTestRunner(t, cache.NewMemoryCache(), nil)
	inputs := []string{k4, "a - b", "this - is; broken -", k5, "x; y; z"}

	recs := collect(t, r.RunBatch(context.Background(), inputs))
	checkComplete(t, recs, len(inputs))
}

func TestRunBatchInvalidInput(t *testing.T) {
	r := newTestRunner(t, cache.NewMemoryCache(), nil)

	recs := collect(t, r.RunBatch(context.Background(), []string{"a -", k4}))
	checkComplete(t, recs, 2)
	for _, rec := range recs {
		if rec.Index == 0 {
			if rec.Err == nil {
				t.Fatal("malformed description should fail")
			}
			if code := errors.GetCode(rec.Err); code != errors.ErrCodeInvalidInput && code != errors.ErrCodeInvalidGraph {
				t.Errorf("unexpected failure code %s", code)
			}
		}
		if rec.Index == 1 && rec.Err != nil {
			t.Errorf("valid graph failed: %v", rec.Err)
		}
	}
}

func TestRunBatchDeduplicatesSharedGraphs(t *testing.T) {
	var analyses atomic.Int32
	counting := func(g *graph.Graph) (*analysis.Result, error) {
		analyses.Add(1)
		return analysis.Analyze(g)
	}
	r := newTestRunner(t, cache.NewMemoryCache(), counting)

	// Two K5 items share one fingerprint: on a cold cache the batch needs
	// exactly two analyses, one per distinct graph.
	recs := collect(t, r.RunBatch(context.Background(), []string{k5, k4, k5}))
	checkComplete(t, recs, 3)
	if got := analyses.Load(); got != 2 {
		t.Errorf("ran %d analyses, want 2", got)
	}

	for _, rec := range recs {
		if rec.Err != nil {
			t.Fatalf("index %d failed: %v", rec.Index, rec.Err)
		}
		var res analysis.Result
		if err := json.Unmarshal(rec.Payload, &res); err != nil {
			t.Fatalf("index %d payload: %v", rec.Index, err)
		}
		wantPlanar := rec.Index == 1
		if res.IsPlanar != wantPlanar {
			t.Errorf("index %d: is_planar = %v, want %v", rec.Index, res.IsPlanar, wantPlanar)
		}
	}
}

func TestRunBatchServesFromCache(t *testing.T) {
	var analyses atomic.Int32
	counting := func(g *graph.Graph) (*analysis.Result, error) {
		analyses.Add(1)
		return analysis.Analyze(g)
	}
	c := cache.NewMemoryCache()
	r := newTestRunner(t, c, counting)
	ctx := context.Background()

	first := collect(t, r.RunBatch(ctx, []string{k4}))
	checkComplete(t, first, 1)
	if first[0].FromCache {
		t.Error("cold cache should not report a hit")
	}

	second := collect(t, r.RunBatch(ctx, []string{k4}))
	checkComplete(t, second, 1)
	if !second[0].FromCache {
		t.Error("second run should hit the cache")
	}
	if got := analyses.Load(); got != 1 {
		t.Errorf("ran %d analyses, want 1", got)
	}
	if string(first[0].Payload) != string(second[0].Payload) {
		t.Error("cached payload differs from the original")
	}
}

func TestRunBatchEmitsHitsBeforeMisses(t *testing.T) {
	c := cache.NewMemoryCache()
	r := newTestRunner(t, c, nil)
	ctx := context.Background()

	collect(t, r.RunBatch(ctx, []string{k4})) // warm up
	recs := collect(t, r.RunBatch(ctx, []string{k5, k4}))
	checkComplete(t, recs, 2)
	if recs[0].Index != 1 || !recs[0].FromCache {
		t.Errorf("first emitted record should be the cache hit at index 1, got index %d (cache=%v)", recs[0].Index, recs[0].FromCache)
	}
}

func TestPoolRecoversFromPanic(t *testing.T) {
	panicking := func(g *graph.Graph) (*analysis.Result, error) {
		panic("boom")
	}
	r := newTestRunner(t, cache.NewNullCache(), panicking)

	recs := collect(t, r.RunBatch(context.Background(), []string{k4}))
	checkComplete(t, recs, 1)
	if !errors.Is(recs[0].Err, errors.ErrCodeWorkerCrashed) {
		t.Fatalf("want WORKER_CRASHED, got %v", recs[0].Err)
	}

	// The pool must stay usable after a crash.
	r.Pool.analyze = analysis.Analyze
	recs = collect(t, r.RunBatch(context.Background(), []string{k4}))
	checkComplete(t, recs, 1)
	if recs[0].Err != nil {
		t.Errorf("pool unusable after crash: %v", recs[0].Err)
	}
}

func TestPoolRetriesOnceAfterCrash(t *testing.T) {
	var calls atomic.Int32
	flaky := func(g *graph.Graph) (*analysis.Result, error) {
		if calls.Add(1) == 1 {
			panic("transient")
		}
		return analysis.Analyze(g)
	}
	r := newTestRunner(t, cache.NewNullCache(), flaky)

	recs := collect(t, r.RunBatch(context.Background(), []string{k4}))
	checkComplete(t, recs, 1)
	if recs[0].Err != nil {
		t.Fatalf("retry should have succeeded: %v", recs[0].Err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("analysis ran %d times, want 2", got)
	}
}

func TestPoolTimesOutRunawayTask(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	stuck := func(g *graph.Graph) (*analysis.Result, error) {
		<-block
		return nil, nil
	}
	pool := NewPool(PoolConfig{Workers: 1, TaskTimeout: 10 * time.Millisecond, Analyze: stuck})
	defer pool.Close()
	r := NewRunner(cache.NewNullCache(), pool, nil)

	recs := collect(t, r.RunBatch(context.Background(), []string{k4}))
	checkComplete(t, recs, 1)
	if !errors.Is(recs[0].Err, errors.ErrCodeWorkerTimeout) {
		t.Fatalf("want WORKER_TIMEOUT, got %v", recs[0].Err)
	}
}

func TestRunBatchContextCancel(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	stuck := func(g *graph.Graph) (*analysis.Result, error) {
		<-block
		return nil, nil
	}
	pool := NewPool(PoolConfig{Workers: 1, TaskTimeout: -1, Analyze: stuck})
	defer pool.Close()
	r := NewRunner(cache.NewNullCache(), pool, nil)

	ctx, cancel := context.WithCancel(context.Background())
	ch := r.RunBatch(ctx, []string{k4})
	cancel()

	// The stream must close without delivering the blocked analysis.
	select {
	case _, open := <-ch:
		if open {
			if _, open = <-ch; open {
				t.Fatal("stream still open after cancellation")
			}
		}
	case <-time.After(time.Second):
		t.Fatal("stream did not close after cancellation")
	}
}

func TestRecordWire(t *testing.T) {
	ok := Record{Index: 2, Payload: json.RawMessage(`{"is_planar":true}`)}
	raw, err := json.Marshal(ok)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"index":2,"result":{"is_planar":true}}`; string(raw) != want {
		t.Errorf("got %s, want %s", raw, want)
	}

	fail := Record{Index: 0, Err: errors.New(errors.ErrCodeInvalidInput, "bad edge")}
	raw, err = json.Marshal(fail)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"code":"INVALID_INPUT"`) || !strings.Contains(string(raw), `"index":0`) {
		t.Errorf("unexpected failure wire %s", raw)
	}
	if strings.Contains(string(raw), "result") {
		t.Errorf("failure record should not carry a result: %s", raw)
	}
}
