// Command file_processor is the canonical conversation-protocol example. It
// reads a text file, reports progress while analyzing it, and emits line,
// word, and character statistics as a JSON output block.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/acorhq/acor/pkg/protocol"
)

func main() {
	if len(os.Args) < 2 {
		_ = protocol.Run("file_processor", "1.0.0", func(e *protocol.Emitter) error {
			return e.InputNeeded(`File path required for processing.

Run this command with the file you want to process:
` + "```bash\nacor file_processor <filepath>\n```" + `

Example:
` + "```bash\nacor file_processor data.txt\n```")
		})
		os.Exit(1)
	}

	if err := protocol.Run("file_processor", "1.0.0", func(e *protocol.Emitter) error {
		return process(e, os.Args[1])
	}); err != nil {
		os.Exit(1)
	}
}

func process(e *protocol.Emitter, path string) error {
	if err := e.Progress(10, "Validating input file"); err != nil {
		return err
	}

	st, err := os.Stat(path)
	if err != nil {
		wd, _ := os.Getwd()
		return e.Error("E_FILE_NOT_FOUND",
			"Cannot locate file: "+path,
			"Check the file path and ensure the file exists",
			"Searched in current directory: "+wd)
	}

	if err := e.Progress(25, "Reading file contents"); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return e.Error("E_READ_ERROR",
			"Failed to read file: "+err.Error(),
			"Ensure you have read permissions for the file", "")
	}

	content := string(data)
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if content == "" {
		lines = nil
	}
	words := len(strings.Fields(content))
	chars := len(content)

	if err := e.Progress(50, fmt.Sprintf("Analyzing %d lines", len(lines))); err != nil {
		return err
	}
	if err := e.Progress(75, "Generating statistics"); err != nil {
		return err
	}

	abs, _ := filepath.Abs(path)
	avg := 0.0
	if len(lines) > 0 {
		avg = float64(chars) / float64(len(lines))
	}
	stats := map[string]any{
		"filename":            filepath.Base(path),
		"path":                abs,
		"size_bytes":          st.Size(),
		"lines":               len(lines),
		"words":               words,
		"characters":          chars,
		"average_line_length": avg,
	}

	if err := e.Progress(90, "Preparing output"); err != nil {
		return err
	}
	if err := e.Output(stats, protocol.FormatJSON); err != nil {
		return err
	}
	if err := e.Progress(100, "Processing complete"); err != nil {
		return err
	}

	if len(lines) == 0 {
		if err := e.AiDirective("The file is empty. Consider checking if this is expected."); err != nil {
			return err
		}
	} else if len(lines) > 10000 {
		if err := e.AiDirective(fmt.Sprintf(
			"Large file detected (%d lines). Consider processing in chunks for better performance.",
			len(lines))); err != nil {
			return err
		}
	}

	return e.Suggestions([]string{
		"Analyze the content for specific patterns",
		"Compare with other files in the directory",
		"Generate a detailed report with visualizations",
		"Archive the processed results",
	}, "Next Steps")
}
