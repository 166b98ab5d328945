package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestRunner(t *testing.T, out *bytes.Buffer) *Runner {
	t.Helper()
	return New(NewResolver(zerolog.Nop()), nil, zerolog.Nop(), out)
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func requireSh(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestRun_SuccessForwardsStdout(t *testing.T) {
	requireSh(t)
	entry := writeScript(t, filepath.Join(t.TempDir(), "hello"), "cli.sh",
		"#!/bin/sh\nprintf 'line one\\nline two\\n'\n")

	var out bytes.Buffer
	res := newTestRunner(t, &out).Run(context.Background(), entry, nil, Options{TimeoutSec: 10})

	if !res.Success || res.ExitCode != 0 {
		t.Fatalf("Result = %+v, want success", res)
	}
	if got := out.String(); got != "line one\nline two\n" {
		t.Errorf("stdout forwarded = %q", got)
	}
}

func TestRun_ArgumentsPassedAsVector(t *testing.T) {
	requireSh(t)
	entry := writeScript(t, filepath.Join(t.TempDir(), "args"), "cli.sh",
		"#!/bin/sh\nprintf '%s|%s\\n' \"$1\" \"$2\"\n")

	var out bytes.Buffer
	res := newTestRunner(t, &out).Run(context.Background(), entry,
		[]string{"first arg", "$(echo injected)"}, Options{TimeoutSec: 10})

	if !res.Success {
		t.Fatalf("Result = %+v", res)
	}
	// A shell would have expanded the substitution; the argv vector must not.
	if got := out.String(); got != "first arg|$(echo injected)\n" {
		t.Errorf("argv handling = %q", got)
	}
}

func TestRun_NonZeroExitSynthesizesError(t *testing.T) {
	requireSh(t)
	entry := writeScript(t, filepath.Join(t.TempDir(), "fail"), "cli.sh",
		"#!/bin/sh\necho partial\necho boom >&2\nexit 3\n")

	var out bytes.Buffer
	res := newTestRunner(t, &out).Run(context.Background(), entry, nil, Options{TimeoutSec: 10})

	if res.Success || res.ExitCode != 3 {
		t.Fatalf("Result = %+v, want exit 3", res)
	}
	if !strings.Contains(res.ErrorMessage, "boom") {
		t.Errorf("ErrorMessage = %q, want stderr content", res.ErrorMessage)
	}
	if !strings.Contains(out.String(), "partial") {
		t.Errorf("stdout must still be forwarded: %q", out.String())
	}
	if !strings.Contains(out.String(), "## Error: Tool Failed (exit code 3)") {
		t.Errorf("missing synthesized error block: %q", out.String())
	}
}

func TestRun_Timeout(t *testing.T) {
	requireSh(t)
	entry := writeScript(t, filepath.Join(t.TempDir(), "sleepy"), "cli.sh",
		"#!/bin/sh\nsleep 10\n")

	var out bytes.Buffer
	start := time.Now()
	res := newTestRunner(t, &out).Run(context.Background(), entry, nil, Options{TimeoutSec: 1})

	if res.Success || !res.TimedOut || res.ExitCode != ExitTimeout {
		t.Fatalf("Result = %+v, want timeout", res)
	}
	if elapsed := time.Since(start); elapsed > 8*time.Second {
		t.Errorf("run took %v, kill appears not to have happened", elapsed)
	}
	if !strings.Contains(out.String(), "## Error: Tool Timeout") {
		t.Errorf("missing timeout error block: %q", out.String())
	}
}

func TestRun_MissingExecutable(t *testing.T) {
	var out bytes.Buffer
	res := newTestRunner(t, &out).Run(context.Background(),
		filepath.Join(t.TempDir(), "ghost", "tool"), nil, Options{TimeoutSec: 5})

	if res.Success || res.ExitCode != ExitFileNotFound {
		t.Fatalf("Result = %+v, want file-not-found", res)
	}
	if !strings.Contains(out.String(), "**Recovery**") {
		t.Errorf("missing recovery hint: %q", out.String())
	}
}

func TestRun_PermissionDenied(t *testing.T) {
	requireSh(t)
	dir := filepath.Join(t.TempDir(), "locked")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// No extension, no exec bit: launching it fails with EACCES.
	entry := filepath.Join(dir, "tool")
	if err := os.WriteFile(entry, []byte("#!/bin/sh\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out bytes.Buffer
	res := newTestRunner(t, &out).Run(context.Background(), entry, nil, Options{TimeoutSec: 5})

	if res.Success || res.ExitCode != ExitPermissionDenied {
		t.Fatalf("Result = %+v, want permission denied", res)
	}
}

func TestRun_EnvIsWhitelistOnly(t *testing.T) {
	requireSh(t)
	t.Setenv("ACOR_TEST_SECRET", "do-not-leak")
	entry := writeScript(t, filepath.Join(t.TempDir(), "envdump"), "cli.sh",
		"#!/bin/sh\nenv\n")

	var out bytes.Buffer
	res := newTestRunner(t, &out).Run(context.Background(), entry, nil,
		Options{TimeoutSec: 10, VersionTag: "1"})

	if !res.Success {
		t.Fatalf("Result = %+v", res)
	}
	if strings.Contains(out.String(), "ACOR_TEST_SECRET") {
		t.Errorf("non-whitelisted variable leaked to child")
	}
	if !strings.Contains(out.String(), "ACOR_VERSION=1") {
		t.Errorf("version tag missing from child env: %q", out.String())
	}
}

func TestRun_ContainmentWarnOnlyProceeds(t *testing.T) {
	requireSh(t)
	outside := filepath.Join(t.TempDir(), "outside")
	entry := writeScript(t, outside, "cli.sh", "#!/bin/sh\necho ran\n")
	roots := []string{t.TempDir()} // does not contain the entry

	var out bytes.Buffer
	res := newTestRunner(t, &out).Run(context.Background(), entry, nil,
		Options{TimeoutSec: 10, AllowedRoots: roots})

	if !res.Success {
		t.Fatalf("warn-only containment must still run the tool: %+v", res)
	}
	if !strings.Contains(out.String(), "ran") {
		t.Errorf("tool output missing: %q", out.String())
	}
}

func TestRun_ContainmentStrictBlocks(t *testing.T) {
	requireSh(t)
	outside := filepath.Join(t.TempDir(), "outside")
	entry := writeScript(t, outside, "cli.sh", "#!/bin/sh\necho ran\n")
	roots := []string{t.TempDir()}

	var out bytes.Buffer
	res := newTestRunner(t, &out).Run(context.Background(), entry, nil,
		Options{TimeoutSec: 10, AllowedRoots: roots, StrictContainment: true})

	if res.Success || res.ExitCode != ExitValidationFailed {
		t.Fatalf("Result = %+v, want validation failure", res)
	}
	if strings.Contains(out.String(), "ran") {
		t.Errorf("tool must not have run: %q", out.String())
	}
}

func TestRun_ContainedEntryRunsCleanly(t *testing.T) {
	requireSh(t)
	root := t.TempDir()
	entry := writeScript(t, filepath.Join(root, "good"), "cli.sh", "#!/bin/sh\necho ok\n")

	var out bytes.Buffer
	res := newTestRunner(t, &out).Run(context.Background(), entry, nil,
		Options{TimeoutSec: 10, AllowedRoots: []string{root}, StrictContainment: true})

	if !res.Success {
		t.Fatalf("Result = %+v", res)
	}
}

func TestRun_EmbeddedJSFallback(t *testing.T) {
	// Force interpreter resolution to fail so the fallback engages.
	saved := trustedInterpreterDirs
	trustedInterpreterDirs = nil
	defer func() { trustedInterpreterDirs = saved }()
	t.Setenv("PATH", t.TempDir())

	dir := filepath.Join(t.TempDir(), "jstool")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	entry := filepath.Join(dir, "cli.js")
	if err := os.WriteFile(entry, []byte(`print("from-js");`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out bytes.Buffer
	res := newTestRunner(t, &out).Run(context.Background(), entry, nil,
		Options{TimeoutSec: 5, JSFallback: true})

	if !res.Success {
		t.Fatalf("Result = %+v", res)
	}
	if !strings.Contains(out.String(), "from-js") {
		t.Errorf("embedded output missing: %q", out.String())
	}

	// With the fallback off the same tool is a hard failure.
	res = newTestRunner(t, &out).Run(context.Background(), entry, nil,
		Options{TimeoutSec: 5})
	if res.Success || res.ExitCode != ExitExecutionFailed {
		t.Errorf("Result = %+v, want interpreter failure", res)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "cli.py")
	if err := os.WriteFile(script, []byte("print()\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Validate(script); err != nil {
		t.Errorf("script with interpreter extension should validate: %v", err)
	}
	if err := Validate(filepath.Join(dir, "missing")); err == nil {
		t.Errorf("missing file must fail validation")
	}
	if err := Validate(dir); err == nil {
		t.Errorf("directory must fail validation")
	}

	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Validate(plain); err == nil {
		t.Errorf("non-executable extensionless file must fail validation")
	}
}
