// Package protocol implements the tool side of the acor conversation
// protocol: a line-oriented Markdown dialect a tool writes to stdout so the
// orchestrating agent can follow its lifecycle, progress, and results.
//
// An Emitter moves through NotStarted -> Started -> Stopped. Start and Stop
// are idempotent; emitting before Start or after Stop is a usage error and is
// reported, never silently dropped.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// FinalState is the terminal status emitted by Stop.
type FinalState string

const (
	Complete  FinalState = "Complete"
	Failed    FinalState = "Failed"
	Cancelled FinalState = "Cancelled"
)

// Format selects the encoding for structured Output data.
type Format string

const (
	FormatAuto     Format = "auto"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// Usage errors: programming mistakes in a tool, not runtime conditions.
var (
	ErrNotStarted = errors.New("protocol: emitter not started; call Start first")
	ErrStopped    = errors.New("protocol: emitter already stopped")
)

// ErrInputRequested signals that the tool asked the agent for input and
// normal execution should end now. Callers check for it explicitly and exit
// cleanly; it is an outcome, not a fault.
var ErrInputRequested = errors.New("protocol: input requested, terminate now")

// Emitter serializes protocol messages to a single output stream. A writer
// lock keeps lines whole even when a tool emits from multiple goroutines.
type Emitter struct {
	name    string
	version string

	mu         sync.Mutex
	w          io.Writer
	started    bool
	stopped    bool
	directives []string
}

// New returns an Emitter for the named tool writing to stdout.
func New(name, version string) *Emitter {
	return NewWithWriter(os.Stdout, name, version)
}

// NewWithWriter returns an Emitter writing to w; used by tests and by tools
// that multiplex output themselves.
func NewWithWriter(w io.Writer, name, version string) *Emitter {
	return &Emitter{name: name, version: version, w: w}
}

// Name returns the tool identifier the emitter was created with.
func (e *Emitter) Name() string { return e.name }

// Start emits the ready marker. Calling it again is a no-op.
func (e *Emitter) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}
	if e.started {
		return nil
	}
	e.started = true
	e.emit("## Status: Ready")
	return nil
}

// Stop flushes buffered directives and emits exactly one terminal status.
// A second call is a no-op.
func (e *Emitter) Stop(state FinalState) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return nil
	}
	e.flushDirectives()
	e.stopped = true
	e.emit("## Status: " + string(state))
	return nil
}

// Status reports the current operational state with an optional message.
func (e *Emitter) Status(state, message string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.active(); err != nil {
		return err
	}
	e.emit("## Status: " + capitalize(state))
	if message != "" {
		e.emit(message)
	}
	return nil
}

// Progress reports work progress. Values in (0, 1] are treated as fractions
// and scaled by 100; the result is clamped to [0, 100] before emission.
func (e *Emitter) Progress(value float64, message string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.active(); err != nil {
		return err
	}
	if value > 0 && value <= 1.0 {
		value *= 100
	}
	pct := int(value)
	if pct < 0 {
		pct = 0
	} else if pct > 100 {
		pct = 100
	}
	e.emit(fmt.Sprintf("## Progress: %d%%", pct))
	if message != "" {
		e.emit(message)
	}
	return nil
}

// Output emits result data. Strings go out as plain text under "## Output";
// anything else is encoded under "## Output Data" in a fenced block, JSON by
// default.
func (e *Emitter) Output(data any, format Format) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.active(); err != nil {
		return err
	}
	if s, ok := data.(string); ok {
		e.emit("## Output")
		e.emit(s)
		return nil
	}

	e.emit("## Output Data")
	switch format {
	case FormatYAML:
		b, err := yaml.Marshal(data)
		if err != nil {
			return fmt.Errorf("protocol: encode yaml: %w", err)
		}
		e.emit("```yaml")
		e.emit(strings.TrimRight(string(b), "\n"))
		e.emit("```")
	case FormatText, FormatMarkdown:
		e.emit(fmt.Sprint(data))
	default: // FormatAuto, FormatJSON
		b, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("protocol: encode json: %w", err)
		}
		e.emit("```json")
		e.emit(string(b))
		e.emit("```")
	}
	return nil
}

// Error reports an error condition with optional recovery guidance and
// technical details. A redundant leading code prefix is stripped from the
// message before emission.
func (e *Emitter) Error(code, message, recovery, details string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.active(); err != nil {
		return err
	}
	display := strings.TrimPrefix(message, code+": ")
	display = strings.TrimPrefix(display, code)
	display = strings.TrimSpace(display)
	e.emit("## Error: " + display)
	if details != "" {
		e.emit("\n**Details**: " + details)
	}
	if recovery != "" {
		e.emit("\n**Recovery**: " + recovery)
	}
	return nil
}

// InputNeeded emits a request-for-input block and returns ErrInputRequested;
// the caller is expected to stop normal execution when it sees that value.
func (e *Emitter) InputNeeded(message string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.active(); err != nil {
		return err
	}
	e.emit("## Input Needed")
	e.emit(message)
	return ErrInputRequested
}

// AiDirective buffers an instruction for the agent. All directives are
// flushed together as a single block when Stop runs, never earlier.
func (e *Emitter) AiDirective(message string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.active(); err != nil {
		return err
	}
	e.directives = append(e.directives, message)
	return nil
}

// Suggestions emits an optional bulleted list of next steps.
func (e *Emitter) Suggestions(items []string, title string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.active(); err != nil {
		return err
	}
	if title != "" {
		e.emit("## Suggestions: " + title)
	} else {
		e.emit("## Suggestions")
	}
	for _, item := range items {
		e.emit("- " + item)
	}
	return nil
}

// active is called with the lock held.
func (e *Emitter) active() error {
	if !e.started {
		return ErrNotStarted
	}
	if e.stopped {
		return ErrStopped
	}
	return nil
}

// flushDirectives is called with the lock held.
func (e *Emitter) flushDirectives() {
	if len(e.directives) == 0 {
		return
	}
	e.emit("## AI Directive")
	for _, d := range e.directives {
		e.emit("- " + d)
	}
	e.directives = nil
}

// emit writes one line; called with the lock held.
func (e *Emitter) emit(line string) {
	fmt.Fprintln(e.w, line)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
