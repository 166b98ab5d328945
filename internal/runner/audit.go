package runner

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// timeNow is a package-level clock to enable deterministic tests.
var timeNow = time.Now

// Audit appends one NDJSON line per tool invocation under dir. Failures are
// best-effort and never affect the tool result.
type Audit struct {
	dir string
}

// NewAudit returns an audit trail writing under dir (e.g. ".acor/audit").
// An empty dir disables auditing.
func NewAudit(dir string) *Audit {
	return &Audit{dir: dir}
}

type auditEntry struct {
	TS          string   `json:"ts"`
	Tool        string   `json:"tool"`
	Argv        []string `json:"argv"`
	Exit        int      `json:"exit"`
	MS          int64    `json:"ms"`
	StdoutBytes int      `json:"stdoutBytes"`
	StderrBytes int      `json:"stderrBytes"`
	TimedOut    bool     `json:"timedOut,omitempty"`
}

// Record captures execution metadata for one invocation.
func (a *Audit) Record(tool string, argv []string, start time.Time, exit, stdoutBytes, stderrBytes int, timedOut bool) {
	if a == nil || a.dir == "" {
		return
	}
	entry := auditEntry{
		TS:          timeNow().UTC().Format(time.RFC3339Nano),
		Tool:        tool,
		Argv:        redactStrings(argv),
		Exit:        exit,
		MS:          time.Since(start).Milliseconds(),
		StdoutBytes: stdoutBytes,
		StderrBytes: stderrBytes,
		TimedOut:    timedOut,
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return
	}
	fname := timeNow().UTC().Format("20060102") + ".log"
	f, err := os.OpenFile(filepath.Join(a.dir, fname), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer func() {
		_ = f.Close()
	}()
	_, _ = f.Write(append(b, '\n'))
}

// redactStrings masks literal substrings listed in ACOR_REDACT
// (comma/semicolon separated) in each value.
func redactStrings(values []string) []string {
	patterns := gatherRedactionLiterals()
	out := make([]string, len(values))
	for i, v := range values {
		for _, lit := range patterns {
			v = strings.ReplaceAll(v, lit, "***REDACTED***")
		}
		out[i] = v
	}
	return out
}

func gatherRedactionLiterals() []string {
	cfg := os.Getenv("ACOR_REDACT")
	if cfg == "" {
		return nil
	}
	fields := strings.FieldsFunc(cfg, func(r rune) bool { return r == ',' || r == ';' })
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
