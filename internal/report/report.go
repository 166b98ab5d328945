// Package report renders orchestrator-side diagnostics either as protocol
// blocks (ai mode) or plain text (human mode). Tools render their own output
// through pkg/protocol; this package covers failures that happen before or
// around a tool run.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Output modes selected via ACOR_OUTPUT_MODE.
const (
	ModeAI    = "ai"
	ModeHuman = "human"
)

// Mode returns the active output mode, defaulting to ai.
func Mode() string {
	if strings.EqualFold(os.Getenv("ACOR_OUTPUT_MODE"), ModeHuman) {
		return ModeHuman
	}
	return ModeAI
}

// Error writes an error block with optional details and recovery hint.
func Error(w io.Writer, title, details, recovery string) {
	if Mode() == ModeAI {
		fmt.Fprintf(w, "## Error: %s\n", title)
		if details != "" {
			fmt.Fprintf(w, "\n**Details**: %s\n", details)
		}
		if recovery != "" {
			fmt.Fprintf(w, "\n**Recovery**: %s\n", recovery)
		}
		return
	}
	fmt.Fprintf(w, "Error: %s\n", title)
	if details != "" {
		fmt.Fprintf(w, "  %s\n", details)
	}
	if recovery != "" {
		fmt.Fprintf(w, "  Suggestion: %s\n", recovery)
	}
}

// Warning writes a warning block with optional details.
func Warning(w io.Writer, title, details string) {
	if Mode() == ModeAI {
		fmt.Fprintf(w, "## Warning: %s\n", title)
		if details != "" {
			fmt.Fprintf(w, "\n**Details**: %s\n", details)
		}
		return
	}
	fmt.Fprintf(w, "Warning: %s\n", title)
	if details != "" {
		fmt.Fprintf(w, "  %s\n", details)
	}
}
