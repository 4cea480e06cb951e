// Package bus implements the engine's publish/subscribe event bus: topic +
// message pairs fan out to a global listener set (registered once, for the
// engine's lifetime) and a per-run listener set (cleared on every stop),
// the same split the teacher's pkg/events.Listener registration has
// between a long-lived progress channel and one created per execution.
package bus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Continuation is an opaque handle a Listener may return to ask that
// further work be scheduled in response to the message it received. The
// bus never interprets this value; the engine package asserts it back to
// *scheduler.Task before enqueuing it.
type Continuation interface{}

// Listener observes (topic, message) pairs. A non-nil returned
// Continuation is handed back to Publish's caller for scheduling; a
// returned error is logged and rebroadcast as an ("error", message)
// event rather than propagated to the publisher.
type Listener func(topic, message string) (Continuation, error)

// Broadcast is a single (topic, message) pair published on the bus,
// recorded for later draining by status().
type Broadcast struct {
	Topic   string `json:"topic"`
	Message string `json:"message"`
}

// Bus is the engine's event bus.
type Bus struct {
	global  []Listener
	scoped  []Listener
	history []Broadcast
	logger  zerolog.Logger
}

// New constructs an empty Bus.
func New(logger zerolog.Logger) *Bus {
	return &Bus{logger: logger.With().Str("component", "bus").Logger()}
}

// ListenGlobal registers a listener that survives across Reset calls.
func (b *Bus) ListenGlobal(l Listener) {
	b.global = append(b.global, l)
}

// Listen registers a listener scoped to the current run; Reset clears it.
func (b *Bus) Listen(l Listener) {
	b.scoped = append(b.scoped, l)
}

// Reset clears the run-scoped listener set, leaving global listeners
// intact. Called when the engine stops. The broadcast history is left
// untouched: it only drains via DrainBroadcasts, on its own status()
// cadence, independent of run start/stop.
func (b *Bus) Reset() {
	b.scoped = nil
}

// DrainBroadcasts returns every (topic, message) pair published since
// the last drain, in publish order, and clears the buffer — the
// status() "broadcasts" field's accumulate-since-last-call contract.
func (b *Bus) DrainBroadcasts() []Broadcast {
	drained := b.history
	b.history = nil
	return drained
}

// ScopedCount reports how many run-scoped listeners are currently
// registered, used by the engine's is-idle check alongside the
// scheduler's queue length.
func (b *Bus) ScopedCount() int {
	return len(b.scoped)
}

// Publish delivers (topic, message) to every registered listener, global
// listeners first, then scoped ones. Listener errors are captured and
// rebroadcast as ("error", ...) rather than returned, matching the
// "captured and rebroadcast" propagation rule for bus-dispatched errors.
// Non-nil Continuations from either set are returned to the caller in
// delivery order for scheduling.
func (b *Bus) Publish(topic, message string) []Continuation {
	b.history = append(b.history, Broadcast{Topic: topic, Message: message})
	var continuations []Continuation
	deliver := func(listeners []Listener) {
		for _, l := range listeners {
			cont, err := l(topic, message)
			if err != nil {
				b.logger.Error().Err(err).Str("topic", topic).Msg("listener error, rebroadcasting")
				b.publishError(err)
				continue
			}
			if cont != nil {
				continuations = append(continuations, cont)
			}
		}
	}
	deliver(b.global)
	deliver(b.scoped)
	return continuations
}

func (b *Bus) publishError(cause error) {
	b.history = append(b.history, Broadcast{Topic: "error", Message: fmt.Sprintf("%v", cause)})
	for _, l := range b.global {
		_, _ = l("error", fmt.Sprintf("%v", cause))
	}
	for _, l := range b.scoped {
		_, _ = l("error", fmt.Sprintf("%v", cause))
	}
}
