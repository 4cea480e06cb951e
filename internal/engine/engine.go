// Package engine implements the Engine Facade: the single entry point an
// embedder (CLI, extension host, test) drives a loaded program through —
// LoadProgram/Start/Step/Complete/Stop/Status/Exit — wiring together the
// registry, loader, scheduler, bus, variable store and plugin context
// manager. Grounded on the teacher's internal/engine.RuntimeWorkflowEngine
// and Executor for construction/wiring style, and on
// internal/server.ExecutionManager for the Prometheus metrics pattern
// reframed as in-process instrumentation (no HTTP server is started
// here; the HTTP/WebSocket front-end is explicitly out of scope).
package engine

import (
	"github.com/blockrt/blockrt/internal/blocks"
	"github.com/blockrt/blockrt/internal/bterr"
	"github.com/blockrt/blockrt/internal/bus"
	"github.com/blockrt/blockrt/internal/loader"
	"github.com/blockrt/blockrt/internal/pluginctx"
	"github.com/blockrt/blockrt/internal/registry"
	"github.com/blockrt/blockrt/internal/scheduler"
	"github.com/blockrt/blockrt/internal/varstore"
	"github.com/rs/zerolog"
)

// Status is the shape returned by the Status control-surface operation.
type Status struct {
	Loaded      bool             `json:"loaded"`
	Running     bool             `json:"running"`
	QueueLength int              `json:"queue_length"`
	Highlights  []string         `json:"highlights"`
	Variables   []varstore.Entry `json:"variables"`
	Idle        bool             `json:"idle"`
	// Broadcasts drains every (topic, message) pair published on the
	// event bus since the last Status call — status()'s "broadcasts"
	// field. Calling Status twice in a row without anything running in
	// between yields an empty slice the second time.
	Broadcasts []bus.Broadcast `json:"broadcasts"`
}

// Config tunes the scheduler's safety bound and whether plugin contexts
// are acquired on Start, the engine's equivalent of the teacher's
// ExecutorConfig options struct.
type Config struct {
	IterationLimit     int
	EnablePluginContext bool
}

// DefaultConfig mirrors DefaultExecutorConfig's role: sane defaults an
// embedder can override selectively.
func DefaultConfig() Config {
	return Config{
		IterationLimit:      100_000,
		EnablePluginContext: true,
	}
}

// Engine is the Engine Facade.
type Engine struct {
	config  Config
	logger  zerolog.Logger
	registry  *registry.Registry
	bus       *bus.Bus
	vars      *varstore.Store
	scheduler *scheduler.Scheduler
	plugins   *pluginctx.Manager
	loader    *loader.Loader
	metrics   *Metrics

	program *loader.Program
	running bool
}

// New builds an Engine with its own fresh registry, bus, variable store,
// scheduler and plugin manager, with the built-in block library already
// registered. Callers may register further extension blocks via
// Registry() before calling LoadProgram.
func New(cfg Config, logger zerolog.Logger) (*Engine, error) {
	b := bus.New(logger)
	vs := varstore.New(b)
	varstore.RegisterCoreHandlers(vs)
	sch := scheduler.New(logger, cfg.IterationLimit)
	pm := pluginctx.NewManager(logger)
	r := registry.New()
	if err := blocks.RegisterAll(r); err != nil {
		return nil, bterr.Wrap(bterr.MalformedProgram, "failed to register built-in blocks", err)
	}
	ld := loader.New(r, sch, b, vs, pm, logger)
	m := NewMetrics()
	sch.SetMetrics(m)

	return &Engine{
		config:    cfg,
		logger:    logger.With().Str("component", "engine").Logger(),
		registry:  r,
		bus:       b,
		vars:      vs,
		scheduler: sch,
		plugins:   pm,
		loader:    ld,
		metrics:   m,
	}, nil
}

// Registry exposes the Block Registry so callers can register built-in
// and extension blocks before loading a program.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// Plugins exposes the Plugin Context Manager so callers can register
// concrete plugin contexts (clipboard, keyboard, ...) before Start.
func (e *Engine) Plugins() *pluginctx.Manager { return e.plugins }

// Bus exposes the Event Bus, e.g. for an embedder to add a global
// listener that forwards every event to a UI.
func (e *Engine) Bus() *bus.Bus { return e.bus }

// Metrics exposes the Prometheus collectors for an embedder to register
// with its own registry.
func (e *Engine) Metrics() *Metrics { return e.metrics }

// LoadProgram parses xmlSource and prepares it to run, matching the
// control surface's "program" operation.
func (e *Engine) LoadProgram(xmlSource string) error {
	e.Stop()
	program, err := e.loader.LoadProgram(xmlSource)
	if err != nil {
		return err
	}
	if len(program.StartingBlocks) == 0 {
		e.logger.Warn().Msg("program has no starting blocks for any registered entry-point type")
	}
	e.program = program
	return nil
}

// Start begins execution: plugin contexts are acquired, every starting
// block runs once so event blocks can register their bus listeners, and
// an ("executor", "start") event is broadcast — matching the original's
// start(is_eager=False). isEager is the eagerness each starting block's
// own invocation runs under (and so, by inheritance, what its own
// unconditional Next/Recurse/substack calls default to); it does not
// change whether the starting block's body runs now — that part always
// runs directly, matching execute_block being called unconditionally
// regardless of is_eager.
func (e *Engine) Start(isEager bool) error {
	if e.program == nil {
		return bterr.New(bterr.MalformedProgram, "no program loaded")
	}
	e.scheduler.Stop()
	e.bus.Reset()
	if e.config.EnablePluginContext {
		e.plugins.AcquireAll(e.broadcastRaw)
	}
	// Starting blocks run directly here (Run bypasses the scheduler's
	// enqueue branch) so an event block's own body (e.g.
	// event_whenflagclicked registering its bus listener) is in place
	// before the ("executor","start") broadcast below fires; the chain
	// that follows a matched listener is what actually lands on the
	// scheduler, via that listener's own ctx.Next(ctx.Eager) call.
	for _, block := range e.program.StartingBlocks {
		if _, err := e.loader.Run(block, isEager); err != nil {
			return err
		}
	}
	e.running = true
	e.broadcastRaw("executor", "start")
	return nil
}

func (e *Engine) broadcastRaw(topic, message string) {
	e.metrics.BroadcastEmitted()
	for _, cont := range e.bus.Publish(topic, message) {
		if t, ok := cont.(*scheduler.Task); ok {
			e.scheduler.Enqueue(t)
		}
	}
}

// Step advances the scheduler by a single task, the "step" control
// surface operation.
func (e *Engine) Step() error {
	return e.scheduler.Step()
}

// Complete runs the scheduler to exhaustion (or its iteration limit),
// the "complete" control surface operation. Per spec §7, a tripped
// iteration limit is fatal only to the scheduler's current run of work —
// it is logged and published as an ("error", ...) event rather than
// returned as a hard failure to the caller.
func (e *Engine) Complete() error {
	err := e.scheduler.Complete()
	if err == nil {
		return nil
	}
	if bterr.Is(err, bterr.IterationLimitExceeded) {
		e.broadcastRaw("error", err.Error())
		return nil
	}
	return err
}

// Stop halts execution: clears the scheduler queue, resets the bus's
// run-scoped listeners, and releases plugin contexts. Idempotent.
func (e *Engine) Stop() {
	e.scheduler.Stop()
	e.bus.Reset()
	e.plugins.ReleaseAll()
	e.running = false
}

// Exit releases all resources and marks the engine unusable for further
// operations beyond another LoadProgram.
func (e *Engine) Exit() {
	e.Stop()
	e.program = nil
}

// IsComplete reports whether the program has nothing left to do: no
// queued tasks and no run-scoped event listeners, matching the
// original's is_complete.
func (e *Engine) IsComplete() bool {
	return e.scheduler.IsIdle() && e.bus.ScopedCount() == 0
}

// Status reports the engine's current state, the "status" control
// surface operation.
func (e *Engine) Status() Status {
	return Status{
		Loaded:      e.program != nil,
		Running:     e.running,
		QueueLength: e.scheduler.Len(),
		Highlights:  e.scheduler.Highlights(),
		Variables:   e.vars.All(),
		Idle:        e.IsComplete(),
		Broadcasts:  e.bus.DrainBroadcasts(),
	}
}
