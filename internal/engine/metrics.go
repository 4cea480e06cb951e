package engine

import "github.com/prometheus/client_golang/prometheus"

// Metrics instruments the Engine Facade and Scheduler the way the
// teacher's internal/server.ExecutionManager instruments workflow
// executions: a handful of counters registered against a caller-supplied
// prometheus.Registerer rather than served over its own HTTP endpoint
// (the HTTP/WebSocket transport is out of scope for this engine).
type Metrics struct {
	tasksScheduled     prometheus.Counter
	tasksStepped       prometheus.Counter
	iterationLimitHits prometheus.Counter
	broadcastsEmitted  prometheus.Counter
}

// NewMetrics builds an unregistered Metrics set.
func NewMetrics() *Metrics {
	return &Metrics{
		tasksScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blockrt_tasks_scheduled_total",
			Help: "Total number of non-eager tasks enqueued onto the scheduler.",
		}),
		tasksStepped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blockrt_tasks_stepped_total",
			Help: "Total number of tasks popped and run by the scheduler.",
		}),
		iterationLimitHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blockrt_iteration_limit_hits_total",
			Help: "Total number of times Complete aborted after hitting the iteration safety bound.",
		}),
		broadcastsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blockrt_broadcasts_emitted_total",
			Help: "Total number of events the engine itself published on the event bus (program start, plugin-context events, iteration-limit errors); events published by blocks and variable writes are not counted.",
		}),
	}
}

// Register registers every collector with r.
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.tasksScheduled, m.tasksStepped, m.iterationLimitHits, m.broadcastsEmitted} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) TaskScheduled()     { m.tasksScheduled.Inc() }
func (m *Metrics) TaskStepped()       { m.tasksStepped.Inc() }
func (m *Metrics) IterationLimitHit() { m.iterationLimitHits.Inc() }
func (m *Metrics) BroadcastEmitted()  { m.broadcastsEmitted.Inc() }
