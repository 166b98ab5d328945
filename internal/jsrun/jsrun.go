// Package jsrun executes a .js tool in-process through an embedded
// interpreter. It exists only as an opt-in fallback for hosts without a
// system JavaScript runtime; the embedded VM gets a wall-clock budget and a
// bounded output buffer because there is no child process to kill.
package jsrun

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dop251/goja"

	"github.com/acorhq/acor/internal/sandbox"
)

// ErrTimeout is returned when the script exceeds its wall-clock budget.
var ErrTimeout = errors.New("javascript execution timed out")

// DefaultOutputKB caps script output when the caller does not.
const DefaultOutputKB = 256

// Result carries the script's captured output stream.
type Result struct {
	Stdout    []byte
	Truncated bool
}

// Run loads and executes the script at path with the given argv. The script
// sees print(s)/console.log(...) writing to the captured output, and an ARGV
// array holding args. Execution is interrupted once timeout elapses.
func Run(ctx context.Context, path string, args []string, timeout time.Duration) (Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read script: %w", err)
	}

	out := sandbox.NewBoundedBuffer(DefaultOutputKB)
	vm := goja.New()

	print := func(call goja.FunctionCall) goja.Value {
		for i, arg := range call.Arguments {
			if i > 0 {
				_, _ = out.Write([]byte(" "))
			}
			_, _ = out.Write([]byte(arg.String()))
		}
		_, _ = out.Write([]byte("\n"))
		return goja.Undefined()
	}
	if err := vm.Set("print", print); err != nil {
		return Result{}, fmt.Errorf("bind print: %w", err)
	}
	console := vm.NewObject()
	if err := console.Set("log", print); err != nil {
		return Result{}, fmt.Errorf("bind console.log: %w", err)
	}
	if err := vm.Set("console", console); err != nil {
		return Result{}, fmt.Errorf("bind console: %w", err)
	}
	if err := vm.Set("ARGV", args); err != nil {
		return Result{}, fmt.Errorf("bind ARGV: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan struct{})
	var runErr error
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				if e, ok := r.(error); ok {
					runErr = e
				} else {
					runErr = fmt.Errorf("panic: %v", r)
				}
			}
		}()
		_, runErr = vm.RunScript(path, string(source))
	}()

	select {
	case <-done:
	case <-runCtx.Done():
		vm.Interrupt("timeout")
		<-done
		return Result{Stdout: out.Bytes(), Truncated: out.Truncated()}, ErrTimeout
	}

	res := Result{Stdout: out.Bytes(), Truncated: out.Truncated()}
	if runErr != nil {
		var interrupted *goja.InterruptedError
		if errors.As(runErr, &interrupted) {
			return res, ErrTimeout
		}
		return res, runErr
	}
	return res, nil
}
