// Package scaffold creates new tool skeletons from embedded templates.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/acorhq/acor/internal/safepath"
)

//go:embed templates
var templates embed.FS

// Kind selects the template flavor.
type Kind string

const (
	// KindAI scaffolds a tool that speaks the conversation protocol.
	KindAI Kind = "ai"
	// KindHuman scaffolds a tool with plain human-readable output.
	KindHuman Kind = "human"
)

// forbiddenPatterns reject templates carrying obviously dangerous
// constructs. Templates ship inside the binary, but screening them keeps a
// tampered build from silently planting these into user projects.
var forbiddenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\beval\b`),
	regexp.MustCompile(`curl[^\n]*\|\s*sh`),
	regexp.MustCompile(`rm\s+-rf\s+/`),
}

// Create writes a new tool skeleton under parentDir/name and returns the
// created file paths. The target directory must not already exist.
func Create(parentDir, name string, kind Kind) ([]string, error) {
	if !safepath.ValidName(name) {
		return nil, fmt.Errorf("invalid tool name %q", name)
	}
	dir := filepath.Join(parentDir, name)
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("directory %q already exists", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create tool directory: %w", err)
	}

	cleanup := func() { _ = os.RemoveAll(dir) }

	cliBody, err := render(filepath.Join("templates", string(kind), "cli.sh.template"), name)
	if err != nil {
		cleanup()
		return nil, err
	}
	cliPath := filepath.Join(dir, "cli.sh")
	if err := os.WriteFile(cliPath, []byte(cliBody), 0o755); err != nil {
		cleanup()
		return nil, fmt.Errorf("write %s: %w", cliPath, err)
	}

	readmeBody, err := render(filepath.Join("templates", "README.md.template"), name)
	if err != nil {
		cleanup()
		return nil, err
	}
	readmePath := filepath.Join(dir, "README.md")
	if err := os.WriteFile(readmePath, []byte(readmeBody), 0o644); err != nil {
		cleanup()
		return nil, fmt.Errorf("write %s: %w", readmePath, err)
	}

	return []string{cliPath, readmePath}, nil
}

func render(templatePath, name string) (string, error) {
	data, err := templates.ReadFile(filepath.ToSlash(templatePath))
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	content := string(data)
	for _, pat := range forbiddenPatterns {
		if pat.MatchString(content) {
			return "", fmt.Errorf("template %s contains forbidden pattern %s", templatePath, pat)
		}
	}
	content = strings.ReplaceAll(content, "{{TOOL_NAME}}", name)
	content = strings.ReplaceAll(content, "{{TOOL_TITLE}}", title(name))
	return content, nil
}

// title turns "file_processor" into "File Processor".
func title(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
