// Package scheduler implements the engine's cooperative task scheduler:
// eager calls run immediately on the caller's own Go call stack (an
// implicit LIFO), while non-eager calls enqueue a continuation onto an
// ordered FIFO queue that Step drains one entry at a time and Complete
// drains to exhaustion, re-invoking each with an eagerness the dequeuer
// itself chooses. Grounded on the original interpreter's
// Executor.task_stack (a plain deque popped left-to-right by step()/
// complete(), where step() always runs the popped task with
// is_eager=False and complete() always runs it with is_eager=True) —
// not on the alternate ExecutorTaskStack/coroutine design sketched in
// task_loop.py, which is never imported anywhere in the original and is
// dead code. Highlight tracking is simplified here to "currently
// enqueued, not yet stepped" since nothing in this engine's synchronous
// block model needs task_loop.py's unused priority-queue-plus-polling
// machinery to express that.
package scheduler

import (
	"github.com/blockrt/blockrt/internal/bterr"
	"github.com/blockrt/blockrt/internal/value"
	"github.com/rs/zerolog"
)

// Task is a single enqueued, not-yet-run continuation. Invoke takes the
// eagerness to run it under from the dequeuer, not from however it was
// enqueued: Step always forces false, Complete always forces true,
// mirroring the original's step() always calling execute_task(...,
// is_eager=False) and complete() always calling it with is_eager=True,
// regardless of the task's own history.
type Task struct {
	ID     string
	Type   string
	Invoke func(eager bool) (value.Value, error)
}

// Metrics is the narrow set of counters the Scheduler reports; the
// engine package supplies a Prometheus-backed implementation.
type Metrics interface {
	TaskScheduled()
	TaskStepped()
	IterationLimitHit()
}

type noopMetrics struct{}

func (noopMetrics) TaskScheduled()     {}
func (noopMetrics) TaskStepped()       {}
func (noopMetrics) IterationLimitHit() {}

// Scheduler is the engine's single cooperative scheduler instance.
type Scheduler struct {
	queue          []*Task
	highlights     map[string]bool
	iterationLimit int
	logger         zerolog.Logger
	metrics        Metrics
}

// New builds a Scheduler. iterationLimit bounds the total number of
// steps Complete will take before raising IterationLimitExceeded — the
// safety net against runaway forever/repeat_until loops that never
// reach an idle state.
func New(logger zerolog.Logger, iterationLimit int) *Scheduler {
	return &Scheduler{
		highlights:     make(map[string]bool),
		iterationLimit: iterationLimit,
		logger:         logger.With().Str("component", "scheduler").Logger(),
		metrics:        noopMetrics{},
	}
}

// SetMetrics installs a Metrics sink; pass nil to go back to a no-op.
func (s *Scheduler) SetMetrics(m Metrics) {
	if m == nil {
		m = noopMetrics{}
	}
	s.metrics = m
}

// Enqueue appends t to the ordered queue and marks it highlighted —
// suspended, visible to the editor as "about to run" — until it is
// stepped.
func (s *Scheduler) Enqueue(t *Task) {
	s.queue = append(s.queue, t)
	if t.ID != "" {
		s.highlights[t.ID] = true
	}
	s.metrics.TaskScheduled()
	s.logger.Debug().Str("task_id", t.ID).Str("block_type", t.Type).Msg("task enqueued")
}

// Len reports the number of tasks currently queued.
func (s *Scheduler) Len() int { return len(s.queue) }

// IsIdle reports whether the queue is empty.
func (s *Scheduler) IsIdle() bool { return len(s.queue) == 0 }

// Highlights returns the ids of currently suspended (enqueued but not
// yet stepped) tasks. The returned slice is a defensive copy.
func (s *Scheduler) Highlights() []string {
	out := make([]string, 0, len(s.highlights))
	for id := range s.highlights {
		out = append(out, id)
	}
	return out
}

// Step pops the front of the queue and runs it non-eagerly — exactly
// one suspended task boundary, matching the original's step() which
// always invokes with is_eager=False regardless of how the task was
// enqueued. A no-op on an empty queue, matching the original's step()
// early return.
func (s *Scheduler) Step() error {
	if len(s.queue) == 0 {
		return nil
	}
	return s.dequeueAndInvoke(false)
}

// Complete drains the queue to exhaustion, invoking every dequeued task
// eagerly (is_eager=True, matching the original's complete()) so each
// one runs any non-eager continuations it itself produces synchronously
// instead of re-queueing and stalling. Bounded by the scheduler's
// iteration limit — the run-to-completion control surface operation.
func (s *Scheduler) Complete() error {
	iterations := 0
	for len(s.queue) > 0 {
		if s.iterationLimit > 0 && iterations >= s.iterationLimit {
			s.metrics.IterationLimitHit()
			return bterr.New(bterr.IterationLimitExceeded, "scheduler did not reach idle within the iteration limit")
		}
		if err := s.dequeueAndInvoke(true); err != nil {
			return err
		}
		iterations++
	}
	return nil
}

// dequeueAndInvoke pops the front of the queue and runs it under the
// given eagerness, supplied by the caller (Step: false, Complete: true)
// rather than recalled from enqueue time.
func (s *Scheduler) dequeueAndInvoke(eager bool) error {
	t := s.queue[0]
	s.queue = s.queue[1:]
	stillQueued := false
	for _, q := range s.queue {
		if q.ID == t.ID {
			stillQueued = true
			break
		}
	}
	if !stillQueued {
		delete(s.highlights, t.ID)
	}
	s.metrics.TaskStepped()
	s.logger.Debug().Str("task_id", t.ID).Str("block_type", t.Type).Bool("eager", eager).Msg("stepping task")
	_, err := t.Invoke(eager)
	if err != nil {
		return bterr.Wrap(bterr.ExecutionError, "task invocation failed", err).At(t.ID)
	}
	return nil
}

// Stop clears the queue and highlight set. Idempotent: calling Stop on
// an already-idle scheduler is a no-op beyond clearing the (already
// empty) highlight set.
func (s *Scheduler) Stop() {
	s.queue = nil
	s.highlights = make(map[string]bool)
}
