package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// chdir changes the working directory for the test and restores it on
// cleanup. It stands in for t.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}

// writeTool creates toolsDir/name/cli.sh with the given body and returns the
// tool directory.
func writeTool(t *testing.T, toolsDir, name, body string) string {
	t.Helper()
	dir := filepath.Join(toolsDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(filepath.Join(dir, "cli.sh"), []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return dir
}

// writeConfig writes a config file pointing at toolsDir and returns its path.
func writeConfig(t *testing.T, toolsDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "version: \"1\"\ntools_dirs:\n  - " + toolsDir + "\ntimeout: 30\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRun_VersionFlag(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := run([]string{"--version"}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}
	if !strings.HasPrefix(out.String(), "acor version ") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRun_Help(t *testing.T) {
	var out, errBuf bytes.Buffer
	if code := run([]string{"--help"}, &out, &errBuf); code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}
	if !strings.Contains(out.String(), "Native commands:") {
		t.Errorf("usage text missing native commands section:\n%s", out.String())
	}
}

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	var out, errBuf bytes.Buffer
	if code := run(nil, &out, &errBuf); code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Errorf("expected usage text, got %q", out.String())
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	var out, errBuf bytes.Buffer
	if code := run([]string{"--bogus"}, &out, &errBuf); code != 6 {
		t.Fatalf("exit = %d, want 6", code)
	}
}

func TestRun_ConfigFlagRequiresPath(t *testing.T) {
	var out, errBuf bytes.Buffer
	if code := run([]string{"--config"}, &out, &errBuf); code != 6 {
		t.Fatalf("exit = %d, want 6", code)
	}
}

func TestDispatch_UnknownCommand(t *testing.T) {
	chdir(t, t.TempDir())
	var out, errBuf bytes.Buffer
	code := run([]string{"no_such_tool"}, &out, &errBuf)
	if code != 2 {
		t.Fatalf("exit = %d, want 2", code)
	}
	if !strings.Contains(errBuf.String(), "Tool not found: no_such_tool") {
		t.Errorf("stderr missing not-found report:\n%s", errBuf.String())
	}
}

func TestDispatch_RunsDiscoveredTool(t *testing.T) {
	chdir(t, t.TempDir())
	toolsDir := t.TempDir()
	writeTool(t, toolsDir, "hello", `printf '## Status: Ready\n'; printf 'hello %s\n' "$1"`)
	cfg := writeConfig(t, toolsDir)

	var out, errBuf bytes.Buffer
	code := run([]string{"--config", cfg, "hello", "world"}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("exit = %d, want 0; stderr:\n%s", code, errBuf.String())
	}
	if !strings.Contains(out.String(), "hello world") {
		t.Errorf("tool stdout not forwarded:\n%s", out.String())
	}
}

func TestDispatch_PropagatesToolExitCode(t *testing.T) {
	chdir(t, t.TempDir())
	toolsDir := t.TempDir()
	writeTool(t, toolsDir, "broken", `echo "boom" >&2; exit 3`)
	cfg := writeConfig(t, toolsDir)

	var out, errBuf bytes.Buffer
	code := run([]string{"--config", cfg, "broken"}, &out, &errBuf)
	if code != 3 {
		t.Fatalf("exit = %d, want 3", code)
	}
}

func TestDispatch_NativeNotShadowedByTool(t *testing.T) {
	chdir(t, t.TempDir())
	toolsDir := t.TempDir()
	writeTool(t, toolsDir, "status", `echo "imposter"`)
	cfg := writeConfig(t, toolsDir)

	var out, errBuf bytes.Buffer
	code := run([]string{"--config", cfg, "status"}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}
	if strings.Contains(out.String(), "imposter") {
		t.Error("discovered tool shadowed the native status command")
	}
	if !strings.Contains(out.String(), "ACOR Status") {
		t.Errorf("native status output missing:\n%s", out.String())
	}
}

func TestCmdList(t *testing.T) {
	chdir(t, t.TempDir())
	toolsDir := t.TempDir()
	writeTool(t, toolsDir, "beta", `true`)
	writeTool(t, toolsDir, "alpha", `true`)
	cfg := writeConfig(t, toolsDir)

	var out, errBuf bytes.Buffer
	if code := run([]string{"--config", cfg, "list"}, &out, &errBuf); code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "alpha") || !strings.HasPrefix(lines[1], "beta") {
		t.Errorf("tools not sorted:\n%s", out.String())
	}
}

func TestCmdList_Empty(t *testing.T) {
	chdir(t, t.TempDir())
	cfg := writeConfig(t, t.TempDir())

	var out, errBuf bytes.Buffer
	if code := run([]string{"--config", cfg, "list"}, &out, &errBuf); code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}
	if !strings.Contains(out.String(), "No tools discovered.") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestCmdStatus_JSON(t *testing.T) {
	chdir(t, t.TempDir())
	toolsDir := t.TempDir()
	writeTool(t, toolsDir, "hello", `true`)
	cfg := writeConfig(t, toolsDir)

	var out, errBuf bytes.Buffer
	if code := run([]string{"--config", cfg, "status", "--json"}, &out, &errBuf); code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}

	var info statusInfo
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if info.DiscoveredTools.Count != 1 || info.DiscoveredTools.Tools[0] != "hello" {
		t.Errorf("unexpected discovered tools: %+v", info.DiscoveredTools)
	}
	if info.Configuration.Timeout != 30 {
		t.Errorf("timeout = %d, want 30", info.Configuration.Timeout)
	}
	if len(info.Directories.Existing) != 1 {
		t.Errorf("existing dirs = %v", info.Directories.Existing)
	}
}

func TestCmdStatus_HumanSections(t *testing.T) {
	chdir(t, t.TempDir())
	cfg := writeConfig(t, filepath.Join(t.TempDir(), "absent"))

	var out, errBuf bytes.Buffer
	if code := run([]string{"--config", cfg, "status"}, &out, &errBuf); code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}
	for _, section := range []string{
		"ACOR Status", "Configuration", "Discovered Tools (0)",
		"Tool Directories", "(missing)", "Recommendations",
	} {
		if !strings.Contains(out.String(), section) {
			t.Errorf("output missing %q:\n%s", section, out.String())
		}
	}
}

func TestCmdNew_CreatesSkeleton(t *testing.T) {
	chdir(t, t.TempDir())
	toolsDir := t.TempDir()
	cfg := writeConfig(t, toolsDir)

	var out, errBuf bytes.Buffer
	code := run([]string{"--config", cfg, "new", "file_processor"}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("exit = %d, want 0; stderr:\n%s", code, errBuf.String())
	}

	script := filepath.Join(toolsDir, "file_processor", "cli.sh")
	st, err := os.Stat(script)
	if err != nil {
		t.Fatalf("scaffolded script missing: %v", err)
	}
	if st.Mode()&0o111 == 0 {
		t.Error("scaffolded script is not executable")
	}
	if _, err := os.Stat(filepath.Join(toolsDir, "file_processor", "README.md")); err != nil {
		t.Errorf("scaffolded README missing: %v", err)
	}

	// A second run must refuse to overwrite.
	out.Reset()
	errBuf.Reset()
	if code := run([]string{"--config", cfg, "new", "file_processor"}, &out, &errBuf); code != 9 {
		t.Fatalf("second run exit = %d, want 9", code)
	}
}

func TestCmdNew_InvalidName(t *testing.T) {
	chdir(t, t.TempDir())
	cfg := writeConfig(t, t.TempDir())

	var out, errBuf bytes.Buffer
	if code := run([]string{"--config", cfg, "new", "../evil"}, &out, &errBuf); code != 6 {
		t.Fatalf("exit = %d, want 6", code)
	}
	if !strings.Contains(errBuf.String(), "Invalid tool name") {
		t.Errorf("stderr missing validation message:\n%s", errBuf.String())
	}
}

func TestCmdNew_MultipleDirsNeedPath(t *testing.T) {
	chdir(t, t.TempDir())
	dirA := t.TempDir()
	dirB := t.TempDir()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "tools_dirs:\n  - " + dirA + "\n  - " + dirB + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out, errBuf bytes.Buffer
	if code := run([]string{"--config", path, "new", "mytool"}, &out, &errBuf); code != 6 {
		t.Fatalf("exit = %d, want 6", code)
	}
	if !strings.Contains(errBuf.String(), "--path") {
		t.Errorf("stderr should ask for --path:\n%s", errBuf.String())
	}

	// Explicit --path resolves the ambiguity.
	out.Reset()
	errBuf.Reset()
	if code := run([]string{"--config", path, "new", "mytool", "--path", dirB}, &out, &errBuf); code != 0 {
		t.Fatalf("exit with --path = %d, want 0; stderr:\n%s", code, errBuf.String())
	}
	if _, err := os.Stat(filepath.Join(dirB, "mytool", "cli.sh")); err != nil {
		t.Errorf("tool not created under --path dir: %v", err)
	}
}

func TestCmdVersion(t *testing.T) {
	chdir(t, t.TempDir())
	var out, errBuf bytes.Buffer
	if code := run([]string{"version"}, &out, &errBuf); code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}
	if !strings.Contains(out.String(), "acor version 0.1.0") {
		t.Errorf("unexpected output %q", out.String())
	}
}
