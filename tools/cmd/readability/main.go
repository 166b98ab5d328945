// Command readability extracts the main article content from a saved HTML
// file and reports it over the conversation protocol.
package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/acorhq/acor/pkg/protocol"
)

const maxHTMLBytes = 5 << 20 // 5 MiB

func main() {
	if len(os.Args) < 2 {
		_ = protocol.Run("readability", "1.0.0", func(e *protocol.Emitter) error {
			return e.InputNeeded(`HTML file required for extraction.

Run this command with the page you want to extract:
` + "```bash\nacor readability <file.html> [base-url]\n```")
		})
		os.Exit(1)
	}

	baseURL := "http://localhost/"
	if len(os.Args) > 2 {
		baseURL = os.Args[2]
	}

	if err := protocol.Run("readability", "1.0.0", func(e *protocol.Emitter) error {
		return extract(e, os.Args[1], baseURL)
	}); err != nil {
		os.Exit(1)
	}
}

func extract(e *protocol.Emitter, path, baseURL string) error {
	if err := e.Progress(10, "Validating input"); err != nil {
		return err
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return e.Error("E_INVALID_ARGUMENT",
			"base URL must be absolute: "+baseURL,
			"Pass the page's original URL as the second argument", "")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return e.Error("E_FILE_NOT_FOUND",
			"Cannot read HTML file: "+path,
			"Check the file path and ensure the file exists", err.Error())
	}
	if len(data) > maxHTMLBytes {
		return e.Error("E_VALIDATION_FAILED",
			fmt.Sprintf("HTML too large: limit %d bytes", maxHTMLBytes),
			"Trim the document before extraction", "")
	}

	if err := e.Progress(40, "Extracting article content"); err != nil {
		return err
	}
	art, err := readability.FromReader(strings.NewReader(string(data)), base)
	if err != nil {
		return e.Error("E_EXECUTION_FAILED",
			"Extraction failed: "+err.Error(),
			"Verify the file contains a complete HTML document", "")
	}

	if err := e.Progress(80, "Preparing output"); err != nil {
		return err
	}
	result := map[string]any{
		"title":    art.Title,
		"byline":   art.Byline,
		"length":   art.Length,
		"excerpt":  art.Excerpt,
		"site":     art.SiteName,
		"text":     art.TextContent,
		"source":   path,
		"base_url": base.String(),
	}
	if err := e.Output(result, protocol.FormatJSON); err != nil {
		return err
	}
	if err := e.Progress(100, "Extraction complete"); err != nil {
		return err
	}

	if art.Length == 0 {
		return e.AiDirective("No readable content was found. The page may be script-rendered.")
	}
	return nil
}
