package engine

import (
	"testing"

	"github.com/blockrt/blockrt/internal/bterr"
	"github.com/blockrt/blockrt/internal/bus"
	"github.com/blockrt/blockrt/internal/value"
	"github.com/blockrt/blockrt/internal/varstore"
	"github.com/rs/zerolog"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	return e
}

func varNumber(e *Engine, id string) float64 {
	v, _ := e.vars.Get(varstore.Ref{Type: "", ID: id})
	n, _ := value.ToNumber(v)
	return n
}

const repeatSumProgram = `<xml xmlns="https://developers.google.com/blockly/xml">
  <variables>
    <variable id="sum" type="">sum</variable>
  </variables>
  <block type="event_whenflagclicked" id="start">
    <next>
      <block type="control_repeat" id="loop">
        <value name="TIMES">
          <shadow type="math_number"><field name="NUM">3</field></shadow>
        </value>
        <statement name="SUBSTACK">
          <block type="data_changevariableby" id="bump">
            <field name="VARIABLE" id="sum">sum</field>
            <value name="VALUE">
              <shadow type="math_number"><field name="NUM">1</field></shadow>
            </value>
          </block>
        </statement>
      </block>
    </next>
  </block>
</xml>`

// S1: repeat(3) { sum += 1 } run to completion leaves sum == 3, and
// status().broadcasts accumulates the ("executor","start") broadcast
// plus one ("variable","change") per SetVariable call since the last
// drain.
func TestScenarioRepeatSum(t *testing.T) {
	e := newTestEngine(t)
	if err := e.LoadProgram(repeatSumProgram); err != nil {
		t.Fatalf("LoadProgram: unexpected error: %v", err)
	}
	if err := e.Start(false); err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}
	if err := e.Complete(); err != nil {
		t.Fatalf("Complete: unexpected error: %v", err)
	}
	if got := varNumber(e, "sum"); got != 3 {
		t.Errorf("expected sum == 3 after repeat(3), got %v", got)
	}
	// The flag-clicked listener itself stays registered waiting for a
	// future ("executor","start") broadcast, so the queue — not
	// IsComplete — is what proves the repeat loop itself drained.
	status := e.Status()
	if status.QueueLength != 0 {
		t.Errorf("expected an empty scheduler queue after Complete, got %d", status.QueueLength)
	}

	var starts, changes int
	for _, b := range status.Broadcasts {
		switch {
		case b.Topic == "executor" && b.Message == "start":
			starts++
		case b.Topic == "variable" && b.Message == "change":
			changes++
		}
	}
	if starts != 1 {
		t.Errorf("expected exactly one (\"executor\",\"start\") broadcast, got %d", starts)
	}
	if changes != 3 {
		t.Errorf("expected exactly three (\"variable\",\"change\") broadcasts, got %d", changes)
	}

	// A second Status call drains nothing further: broadcasts only
	// accumulate between drains, they don't replay.
	if got := len(e.Status().Broadcasts); got != 0 {
		t.Errorf("expected a second Status call to see no further broadcasts, got %d", got)
	}
}

// S2: each Step advances exactly one non-eager task boundary — a
// straight-line statement never collapses an entire loop's worth of
// work into a single Step, and sum only ever moves by 0 or 1 per call.
func TestScenarioStepping(t *testing.T) {
	e := newTestEngine(t)
	if err := e.LoadProgram(repeatSumProgram); err != nil {
		t.Fatalf("LoadProgram: unexpected error: %v", err)
	}
	if err := e.Start(false); err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	steppedToNonzero := 0
	for i := 0; i < 50 && !e.IsComplete(); i++ {
		before := varNumber(e, "sum")
		if err := e.Step(); err != nil {
			t.Fatalf("Step: unexpected error: %v", err)
		}
		after := varNumber(e, "sum")
		delta := after - before
		if delta < 0 || delta > 1 {
			t.Fatalf("a single Step should advance sum by at most 1, went from %v to %v", before, after)
		}
		if delta > 0 {
			steppedToNonzero++
		}
	}
	if got := varNumber(e, "sum"); got != 3 {
		t.Errorf("expected sum == 3 after stepping to completion, got %v", got)
	}
	if steppedToNonzero != 3 {
		t.Errorf("expected 3 separate Steps to each advance sum by 1, got %d", steppedToNonzero)
	}
}

const broadcastHandshakeProgram = `<xml xmlns="https://developers.google.com/blockly/xml">
  <variables>
    <variable id="ping" type="broadcast_msg">ping</variable>
    <variable id="hits" type="">hits</variable>
  </variables>
  <block type="event_whenflagclicked" id="start">
    <next>
      <block type="event_broadcast" id="send">
        <field name="BROADCAST_INPUT" id="ping" variabletype="broadcast_msg">ping</field>
      </block>
    </next>
  </block>
  <block type="event_whenbroadcastreceived" id="receiver">
    <field name="BROADCAST_OPTION" id="ping" variabletype="broadcast_msg">ping</field>
    <next>
      <block type="data_changevariableby" id="count">
        <field name="VARIABLE" id="hits">hits</field>
        <value name="VALUE">
          <shadow type="math_number"><field name="NUM">1</field></shadow>
        </value>
      </block>
    </next>
  </block>
</xml>`

// S3: a broadcast/receiver handshake across two independent starting
// blocks delivers exactly once.
func TestScenarioBroadcastHandshake(t *testing.T) {
	e := newTestEngine(t)
	if err := e.LoadProgram(broadcastHandshakeProgram); err != nil {
		t.Fatalf("LoadProgram: unexpected error: %v", err)
	}
	if len(e.program.StartingBlocks) != 2 {
		t.Fatalf("expected 2 starting blocks, got %d", len(e.program.StartingBlocks))
	}
	if err := e.Start(false); err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}
	if err := e.Complete(); err != nil {
		t.Fatalf("Complete: unexpected error: %v", err)
	}
	if got := varNumber(e, "hits"); got != 1 {
		t.Errorf("expected the broadcast receiver to fire exactly once, got hits=%v", got)
	}
}

const mathProgram = `<xml xmlns="https://developers.google.com/blockly/xml">
  <variables>
    <variable id="result" type="">result</variable>
  </variables>
  <block type="event_whenflagclicked" id="start">
    <next>
      <block type="data_setvariableto" id="set">
        <field name="VARIABLE" id="result">result</field>
        <value name="VALUE">
          <block type="operator_add" id="add">
            <value name="OPERAND1">
              <shadow type="math_number"><field name="NUM">2</field></shadow>
            </value>
            <value name="OPERAND2">
              <block type="operator_multiply" id="mul">
                <value name="OPERAND1">
                  <shadow type="math_number"><field name="NUM">3</field></shadow>
                </value>
                <value name="OPERAND2">
                  <shadow type="math_number"><field name="NUM">4</field></shadow>
                </value>
              </block>
            </value>
          </block>
        </value>
      </block>
    </next>
  </block>
</xml>`

// S4: nested operator blocks evaluate eagerly before the containing
// statement runs: result = 2 + (3 * 4) = 14.
func TestScenarioMath(t *testing.T) {
	e := newTestEngine(t)
	if err := e.LoadProgram(mathProgram); err != nil {
		t.Fatalf("LoadProgram: unexpected error: %v", err)
	}
	if err := e.Start(false); err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}
	if err := e.Complete(); err != nil {
		t.Fatalf("Complete: unexpected error: %v", err)
	}
	if got := varNumber(e, "result"); got != 14 {
		t.Errorf("expected result == 14, got %v", got)
	}
}

const listOpsProgram = `<xml xmlns="https://developers.google.com/blockly/xml">
  <variables>
    <variable id="l" type="list">numbers</variable>
  </variables>
  <block type="event_whenflagclicked" id="start">
    <next>
      <block type="data_addtolist" id="add1">
        <field name="LIST" id="l" variabletype="list">numbers</field>
        <value name="ITEM">
          <shadow type="math_number"><field name="NUM">10</field></shadow>
        </value>
        <next>
          <block type="data_addtolist" id="add2">
            <field name="LIST" id="l" variabletype="list">numbers</field>
            <value name="ITEM">
              <shadow type="math_number"><field name="NUM">20</field></shadow>
            </value>
          </block>
        </next>
      </block>
    </next>
  </block>
</xml>`

// S5: sequential list mutations accumulate in program order.
func TestScenarioListOps(t *testing.T) {
	e := newTestEngine(t)
	if err := e.LoadProgram(listOpsProgram); err != nil {
		t.Fatalf("LoadProgram: unexpected error: %v", err)
	}
	if err := e.Start(false); err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}
	if err := e.Complete(); err != nil {
		t.Fatalf("Complete: unexpected error: %v", err)
	}
	v, _ := e.vars.Get(varstore.Ref{Type: "list", ID: "l"})
	items := value.ToList(v)
	if len(items) != 2 {
		t.Fatalf("expected 2 list items, got %v", items)
	}
	n0, _ := value.ToNumber(items[0])
	n1, _ := value.ToNumber(items[1])
	if n0 != 10 || n1 != 20 {
		t.Errorf("expected [10, 20], got [%v, %v]", n0, n1)
	}
}

const foreverProgram = `<xml xmlns="https://developers.google.com/blockly/xml">
  <variables>
    <variable id="ticks" type="">ticks</variable>
  </variables>
  <block type="event_whenflagclicked" id="start">
    <next>
      <block type="control_forever" id="loop">
        <statement name="SUBSTACK">
          <block type="data_changevariableby" id="tick">
            <field name="VARIABLE" id="ticks">ticks</field>
            <value name="VALUE">
              <shadow type="math_number"><field name="NUM">1</field></shadow>
            </value>
          </block>
        </statement>
      </block>
    </next>
  </block>
</xml>`

// S6: Stop cancels a forever loop that would otherwise never reach idle,
// and is idempotent to call more than once.
func TestScenarioStopCancelsForeverLoop(t *testing.T) {
	e := newTestEngine(t)
	if err := e.LoadProgram(foreverProgram); err != nil {
		t.Fatalf("LoadProgram: unexpected error: %v", err)
	}
	if err := e.Start(false); err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		if err := e.Step(); err != nil {
			t.Fatalf("Step: unexpected error: %v", err)
		}
	}
	if varNumber(e, "ticks") == 0 {
		t.Error("expected the forever loop to have ticked at least once before Stop")
	}

	e.Stop()
	if !e.IsComplete() {
		t.Error("Stop should leave the engine idle")
	}
	e.Stop()
	if !e.IsComplete() {
		t.Error("Stop should be idempotent")
	}
}

func TestCompleteReportsIterationLimitRatherThanFailing(t *testing.T) {
	e, err := New(Config{IterationLimit: 5, EnablePluginContext: false}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	if err := e.LoadProgram(foreverProgram); err != nil {
		t.Fatalf("LoadProgram: unexpected error: %v", err)
	}
	if err := e.Start(false); err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	var sawIterationLimitError bool
	e.bus.ListenGlobal(func(topic, message string) (bus.Continuation, error) {
		if topic == "error" {
			sawIterationLimitError = true
		}
		return nil, nil
	})

	if err := e.Complete(); err != nil {
		t.Fatalf("Complete should swallow IterationLimitExceeded, got %v", err)
	}
	if !sawIterationLimitError {
		t.Error("expected an (\"error\", ...) broadcast when the iteration limit trips")
	}
}

func TestHighlightsAreSubsetOfSuspendedTasks(t *testing.T) {
	e := newTestEngine(t)
	if err := e.LoadProgram(repeatSumProgram); err != nil {
		t.Fatalf("LoadProgram: unexpected error: %v", err)
	}
	if err := e.Start(false); err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}
	status := e.Status()
	if len(status.Highlights) > status.QueueLength {
		t.Errorf("highlighted task count (%d) should never exceed the queue length (%d)", len(status.Highlights), status.QueueLength)
	}
}

func TestLoadProgramWithUnknownBlockFailsSynchronously(t *testing.T) {
	e := newTestEngine(t)
	err := e.LoadProgram(`<xml xmlns="https://developers.google.com/blockly/xml"><block type="not_real" id="x"></block></xml>`)
	if !bterr.Is(err, bterr.UnknownBlock) {
		t.Errorf("expected UnknownBlock, got %v", err)
	}
}
