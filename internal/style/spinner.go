package style

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Spinner is the run command's progress indicator, abstracted so tests
// can swap in a deterministic, non-animated implementation.
type Spinner interface {
	SetSuffix(suffix string)
	SetFinalMSG(finalMSG string)
	Start()
	Stop()
}

// TestSpinner prints one line per update instead of redrawing in place,
// so a captured run trace stays stable under snapshot testing.
type TestSpinner struct {
	ID       string
	mu       *sync.Mutex
	Suffix   string
	FinalMSG string
	color    func(a ...interface{}) string
	Writer   io.Writer
	active   bool
}

// NewTestSpinner builds a TestSpinner writing to w, colored white by
// default; call Color to change it.
func NewTestSpinner(id string, w io.Writer) *TestSpinner {
	return &TestSpinner{
		ID:     id,
		mu:     &sync.Mutex{},
		Writer: w,
		color:  color.New(color.FgWhite).SprintFunc(),
	}
}

func (s *TestSpinner) SetSuffix(suffix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Suffix = suffix
}

func (s *TestSpinner) SetFinalMSG(finalMSG string) { s.FinalMSG = finalMSG }

func (s *TestSpinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	fmt.Fprintf(s.Writer, "[%s] %s\n", s.ID, s.color(s.Suffix))
}

func (s *TestSpinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	fmt.Fprintf(s.Writer, "[%s] %s\n", s.ID, s.color(s.FinalMSG))
}

// Color restricts the spinner's text to one of a small named palette,
// matching the teacher's Color validation.
func (s *TestSpinner) Color(name string) error {
	palette := map[string]color.Attribute{
		"black": color.FgBlack, "red": color.FgRed, "green": color.FgGreen,
		"yellow": color.FgYellow, "blue": color.FgBlue, "magenta": color.FgMagenta,
		"cyan": color.FgCyan, "white": color.FgWhite,
	}
	attr, ok := palette[name]
	if !ok {
		return fmt.Errorf("invalid spinner color %q", name)
	}
	s.mu.Lock()
	s.color = color.New(attr).SprintFunc()
	s.mu.Unlock()
	return nil
}

// TerminalSpinner wraps briandowns/spinner for interactive terminals.
type TerminalSpinner struct {
	spinner *spinner.Spinner
}

func NewTerminalSpinner(w io.Writer) *TerminalSpinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	return &TerminalSpinner{spinner: s}
}

func (s *TerminalSpinner) SetSuffix(suffix string)   { s.spinner.Suffix = suffix }
func (s *TerminalSpinner) SetFinalMSG(finalMSG string) { s.spinner.FinalMSG = finalMSG }
func (s *TerminalSpinner) Start()                    { s.spinner.Start() }
func (s *TerminalSpinner) Stop()                     { s.spinner.Stop() }

// SpinnerManager hands out Spinners, switching to the deterministic
// TestSpinner under BLOCKRT_TEST=true so CLI snapshot tests don't
// capture animation frames or a TTY-only escape sequence.
type SpinnerManager struct {
	mu      sync.Mutex
	writer  io.Writer
	counter int
}

func NewSpinnerManager(w io.Writer) *SpinnerManager {
	return &SpinnerManager{writer: w}
}

func (m *SpinnerManager) Start() Spinner {
	m.mu.Lock()
	id := fmt.Sprintf("spinner-%d", m.counter)
	m.counter++
	m.mu.Unlock()

	if os.Getenv("BLOCKRT_TEST") == "true" {
		return NewTestSpinner(id, m.writer)
	}
	return NewTerminalSpinner(m.writer)
}
