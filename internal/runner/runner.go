// Package runner launches a discovered tool as a child process under a time
// bound and converts the outcome into a typed Result. The child runs in a
// freshly scrubbed environment and in its own process group so that a timeout
// can kill the whole subtree, not just the direct child.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/acorhq/acor/internal/jsrun"
	"github.com/acorhq/acor/internal/report"
	"github.com/acorhq/acor/internal/safepath"
)

// killGrace bounds the reap wait after the process group is killed. A child
// that survives it is reported as a cleanup failure, not retried.
const killGrace = 5 * time.Second

// Options configures one invocation.
type Options struct {
	// TimeoutSec bounds the run; <= 0 falls back to 120.
	TimeoutSec int
	// AllowedRoots re-validates the entry point at launch time. Empty skips
	// the check.
	AllowedRoots []string
	// VersionTag is exported to the child as ACOR_VERSION.
	VersionTag string
	// StrictContainment turns the launch-time containment warning into a
	// hard failure.
	StrictContainment bool
	// JSFallback permits in-process execution of .js tools when no system
	// runtime exists.
	JSFallback bool
}

func (o Options) timeout() time.Duration {
	if o.TimeoutSec <= 0 {
		return 120 * time.Second
	}
	return time.Duration(o.TimeoutSec) * time.Second
}

// Runner executes tools. All reporting goes through the injected logger and
// output sink so tests can substitute capturing fakes.
type Runner struct {
	resolver *Resolver
	audit    *Audit
	log      zerolog.Logger
	out      io.Writer
}

// New builds a Runner. audit may be nil to disable the execution trail.
func New(resolver *Resolver, audit *Audit, log zerolog.Logger, out io.Writer) *Runner {
	return &Runner{resolver: resolver, audit: audit, log: log, out: out}
}

// Run launches the tool at entry with args and blocks until it exits or the
// timeout elapses. Standard output is forwarded verbatim to the output sink
// only after the child terminates.
func (r *Runner) Run(ctx context.Context, entry string, args []string, opts Options) Result {
	start := timeNow()

	// Re-resolve immediately before launch: discovery happened earlier and
	// the path may have been swapped for a symlink since.
	resolved, err := safepath.Resolve(entry)
	if err != nil {
		report.Error(r.out, fmt.Sprintf("Tool executable not found: %s", entry),
			"", "Ensure the tool is properly installed")
		return failure(ExitFileNotFound, fmt.Sprintf("tool executable not found: %s", entry))
	}
	if len(opts.AllowedRoots) > 0 && !safepath.ContainedInAny(resolved, opts.AllowedRoots) {
		if opts.StrictContainment {
			msg := fmt.Sprintf("entry point %s resolves outside the allowed roots", entry)
			report.Error(r.out, "Tool path escapes allowed roots", msg,
				"Move the tool under a configured tools directory")
			return failure(ExitValidationFailed, msg)
		}
		r.log.Warn().
			Str("event", "path_escape").
			Str("entry", entry).
			Str("resolved", resolved).
			Msg("entry point resolves outside allowed roots, proceeding")
	}

	prefix, err := r.resolver.CommandFor(entry)
	if err != nil {
		if errors.Is(err, ErrInterpreterNotFound) && opts.JSFallback && filepath.Ext(entry) == ".js" {
			return r.runEmbeddedJS(ctx, entry, args, opts, start)
		}
		report.Error(r.out, err.Error(), "",
			"Install the required interpreter or adjust PATH")
		return failure(ExitExecutionFailed, err.Error())
	}

	argv := append(append(append([]string(nil), prefix...), entry), args...)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = buildEnv(opts.VersionTag)
	setNewProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return r.launchFailure(entry, argv, start, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(opts.timeout())
	defer timer.Stop()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-ctx.Done():
		r.killAndReap(cmd, done)
		return failure(ExitGeneralError, "run cancelled")
	case <-timer.C:
		r.killAndReap(cmd, done)
		report.Error(r.out, "Tool Timeout",
			fmt.Sprintf("Tool exceeded %d second timeout", int(opts.timeout().Seconds())),
			"Consider breaking the operation into smaller chunks or increasing timeout")
		r.record(entry, argv, start, ExitTimeout, stdout.Len(), stderr.Len(), true)
		return Result{
			Success:      false,
			ExitCode:     ExitTimeout,
			ErrorMessage: fmt.Sprintf("tool exceeded %ds timeout", int(opts.timeout().Seconds())),
			TimedOut:     true,
		}
	}

	exitCode := 0
	if waitErr != nil {
		var ee *exec.ExitError
		if errors.As(waitErr, &ee) && ee.ProcessState != nil {
			exitCode = ee.ProcessState.ExitCode()
		} else {
			r.record(entry, argv, start, ExitExecutionFailed, stdout.Len(), stderr.Len(), false)
			report.Error(r.out, fmt.Sprintf("Unexpected error running tool: %v", waitErr), "", "")
			return failure(ExitExecutionFailed, waitErr.Error())
		}
	}

	// Forward captured stdout byte-for-byte once the child has exited.
	_, _ = r.out.Write(stdout.Bytes())

	r.record(entry, argv, start, exitCode, stdout.Len(), stderr.Len(), false)

	if exitCode != 0 {
		report.Error(r.out, fmt.Sprintf("Tool Failed (exit code %d)", exitCode),
			stderr.String(), "")
		return failure(exitCode, stderr.String())
	}
	return success(0)
}

// killAndReap kills the whole process group, then waits a bounded grace
// period for the child to be reaped so no zombie is left behind. A reap that
// itself times out is logged as a distinct cleanup failure.
func (r *Runner) killAndReap(cmd *exec.Cmd, done <-chan error) {
	if err := killProcessGroup(cmd); err != nil {
		r.log.Warn().Err(err).Msg("failed to kill process group")
	}
	select {
	case <-done:
	case <-time.After(killGrace):
		r.log.Error().
			Str("event", "process_cleanup_failure").
			Int("pid", pid(cmd)).
			Msg("child did not terminate within the grace period; possible resource leak")
	}
}

func pid(cmd *exec.Cmd) int {
	if cmd.Process == nil {
		return 0
	}
	return cmd.Process.Pid
}

// launchFailure maps launch-time OS errors to distinct result codes with a
// recovery hint. Nothing here retries.
func (r *Runner) launchFailure(entry string, argv []string, start time.Time, err error) Result {
	r.record(entry, argv, start, ExitExecutionFailed, 0, 0, false)
	switch {
	case errors.Is(err, os.ErrNotExist):
		msg := fmt.Sprintf("Tool executable not found: %s", entry)
		report.Error(r.out, msg, "", "Ensure the tool is properly installed")
		return failure(ExitFileNotFound, msg)
	case errors.Is(err, os.ErrPermission):
		msg := fmt.Sprintf("Permission denied executing tool: %s", entry)
		report.Error(r.out, msg, "", "Check file permissions (chmod +x)")
		return failure(ExitPermissionDenied, msg)
	default:
		msg := fmt.Sprintf("Unexpected error running tool: %v", err)
		report.Error(r.out, msg, "", "")
		return failure(ExitExecutionFailed, msg)
	}
}

// runEmbeddedJS executes a .js tool through the embedded interpreter when no
// system runtime exists and the fallback is enabled.
func (r *Runner) runEmbeddedJS(ctx context.Context, entry string, args []string, opts Options, start time.Time) Result {
	r.log.Warn().
		Str("event", "js_embedded_fallback").
		Str("entry", entry).
		Msg("no system JavaScript runtime; using embedded interpreter")

	res, err := jsrun.Run(ctx, entry, args, opts.timeout())
	_, _ = r.out.Write(res.Stdout)
	argv := []string{"(embedded-js)", entry}

	switch {
	case errors.Is(err, jsrun.ErrTimeout):
		report.Error(r.out, "Tool Timeout",
			fmt.Sprintf("Tool exceeded %d second timeout", int(opts.timeout().Seconds())),
			"Consider breaking the operation into smaller chunks or increasing timeout")
		r.record(entry, argv, start, ExitTimeout, len(res.Stdout), 0, true)
		return Result{
			Success:      false,
			ExitCode:     ExitTimeout,
			ErrorMessage: err.Error(),
			TimedOut:     true,
		}
	case err != nil:
		report.Error(r.out, "Tool Failed", err.Error(), "")
		r.record(entry, argv, start, ExitExecutionFailed, len(res.Stdout), 0, false)
		return failure(ExitExecutionFailed, err.Error())
	}
	r.record(entry, argv, start, 0, len(res.Stdout), 0, false)
	return success(0)
}

func (r *Runner) record(entry string, argv []string, start time.Time, exit, stdoutBytes, stderrBytes int, timedOut bool) {
	r.audit.Record(filepath.Base(filepath.Dir(entry)), argv, start, exit, stdoutBytes, stderrBytes, timedOut)
}
