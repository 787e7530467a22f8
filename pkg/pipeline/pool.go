package pipeline

import (
	"context"
	"encoding/json"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/planview/planview/pkg/analysis"
	"github.com/planview/planview/pkg/errors"
	"github.com/planview/planview/pkg/graph"
	"github.com/planview/planview/pkg/observability"
)

// AnalyzeFunc computes an analysis result for one graph. The default is
// analysis.Analyze; tests substitute their own.
type AnalyzeFunc func(g *graph.Graph) (*analysis.Result, error)

// Task is one unit of pool work: a parsed graph identified by its
// fingerprint.
type Task struct {
	Fingerprint string
	Graph       *graph.Graph
}

// TaskResult pairs a fingerprint with its serialized analysis or failure.
type TaskResult struct {
	Fingerprint string
	Payload     json.RawMessage
	Err         error
}

// PoolConfig configures a WorkerPool. Zero values select the defaults.
type PoolConfig struct {
	// Workers is the fixed pool size; defaults to runtime.NumCPU().
	Workers int

	// TaskTimeout bounds one analysis. A timed-out computation is
	// abandoned and its slot reclaimed. Negative disables the timeout;
	// zero selects DefaultTaskTimeout.
	TaskTimeout time.Duration

	// Analyze overrides the analysis function; defaults to
	// analysis.Analyze.
	Analyze AnalyzeFunc

	Logger *log.Logger
}

// WorkerPool runs graph analyses on a fixed set of goroutines, created once
// per process. A panicking analysis is retried once on a fresh run and then
// surfaced as a WORKER_CRASHED failure; neither panics nor timeouts take a
// worker down.
type WorkerPool struct {
	tasks   chan poolTask
	done    chan struct{}
	timeout time.Duration
	analyze AnalyzeFunc
	logger  *log.Logger
}

type poolTask struct {
	task Task
	out  chan<- TaskResult
}

// NewPool creates and starts a pool.
func NewPool(cfg PoolConfig) *WorkerPool {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.TaskTimeout == 0 {
		cfg.TaskTimeout = DefaultTaskTimeout
	}
	if cfg.TaskTimeout < 0 {
		cfg.TaskTimeout = 0
	}
	if cfg.Analyze == nil {
		cfg.Analyze = analysis.Analyze
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	p := &WorkerPool{
		tasks:   make(chan poolTask),
		done:    make(chan struct{}),
		timeout: cfg.TaskTimeout,
		analyze: cfg.Analyze,
		logger:  cfg.Logger,
	}
	for i := 0; i < cfg.Workers; i++ {
		go p.worker()
	}
	return p
}

// Submit enqueues a task. The result is delivered on out, which must have
// capacity for it so workers never block on delivery.
func (p *WorkerPool) Submit(ctx context.Context, t Task, out chan<- TaskResult) error {
	select {
	case p.tasks <- poolTask{task: t, out: out}:
		return nil
	case <-p.done:
		return errors.New(errors.ErrCodeInternal, "worker pool is closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the workers. In-flight analyses finish; queued submissions are
// rejected.
func (p *WorkerPool) Close() {
	close(p.done)
}

func (p *WorkerPool) worker() {
	for {
		select {
		case pt := <-p.tasks:
			pt.out <- p.run(pt.task)
		case <-p.done:
			return
		}
	}
}

// run executes one task with panic recovery, a single retry after a crash,
// and the optional timeout.
func (p *WorkerPool) run(t Task) TaskResult {
	res := p.runOnce(t)
	if errors.Is(res.Err, errors.ErrCodeWorkerCrashed) {
		p.logger.Warn("analysis crashed, retrying once", "fingerprint", t.Fingerprint)
		retry := p.runOnce(t)
		if retry.Err == nil {
			return retry
		}
	}
	return res
}

func (p *WorkerPool) runOnce(t Task) TaskResult {
	ctx := context.Background()
	start := time.Now()
	observability.Analysis().OnAnalysisStart(ctx, t.Fingerprint, t.Graph.NodeCount(), t.Graph.EdgeCount())

	done := make(chan TaskResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("analysis panicked", "fingerprint", t.Fingerprint, "panic", r)
				done <- TaskResult{
					Fingerprint: t.Fingerprint,
					Err:         errors.New(errors.ErrCodeWorkerCrashed, "analysis crashed"),
				}
			}
		}()

		res, err := p.analyze(t.Graph)
		if err != nil {
			done <- TaskResult{Fingerprint: t.Fingerprint, Err: err}
			return
		}
		payload, err := json.Marshal(res)
		if err != nil {
			done <- TaskResult{
				Fingerprint: t.Fingerprint,
				Err:         errors.Wrap(errors.ErrCodeInternal, err, "serializing analysis result"),
			}
			return
		}
		done <- TaskResult{Fingerprint: t.Fingerprint, Payload: payload}
	}()

	var out TaskResult
	if p.timeout > 0 {
		timer := time.NewTimer(p.timeout)
		defer timer.Stop()
		select {
		case out = <-done:
		case <-timer.C:
			// The computation keeps running detached; the slot moves on.
			p.logger.Error("analysis timed out", "fingerprint", t.Fingerprint, "timeout", p.timeout)
			out = TaskResult{
				Fingerprint: t.Fingerprint,
				Err:         errors.New(errors.ErrCodeWorkerTimeout, "analysis timed out"),
			}
		}
	} else {
		out = <-done
	}

	var planarFlag bool
	if out.Err == nil {
		var peek struct {
			IsPlanar bool `json:"is_planar"`
		}
		_ = json.Unmarshal(out.Payload, &peek)
		planarFlag = peek.IsPlanar
	}
	observability.Analysis().OnAnalysisComplete(ctx, t.Fingerprint, planarFlag, time.Since(start), out.Err)
	return out
}
