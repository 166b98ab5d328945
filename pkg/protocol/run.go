package protocol

import "errors"

// Run drives a tool body through the full lifecycle: Start, body, Stop. A nil
// body error stops with Complete. ErrInputRequested is a clean termination:
// the Input Needed block is the final output, no terminal status follows, and
// Run returns nil so the caller can exit zero. Any other error is reported
// through the protocol and stops with Failed; the original error is returned
// for the caller's exit code.
func Run(name, version string, body func(*Emitter) error) error {
	e := New(name, version)
	return run(e, body)
}

func run(e *Emitter, body func(*Emitter) error) error {
	if err := e.Start(); err != nil {
		return err
	}
	err := body(e)
	switch {
	case err == nil:
		return e.Stop(Complete)
	case errors.Is(err, ErrInputRequested):
		return nil
	default:
		_ = e.Error("E_EXCEPTION", "Tool failed: "+err.Error(),
			"Check error details and retry", "")
		_ = e.Stop(Failed)
		return err
	}
}
