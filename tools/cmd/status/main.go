// Command status reports orchestrator configuration and tool discovery
// results over the conversation protocol. It is the protocol-speaking
// counterpart of "acor status".
package main

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/acorhq/acor/internal/config"
	"github.com/acorhq/acor/internal/discovery"
	"github.com/acorhq/acor/internal/version"
	"github.com/acorhq/acor/pkg/protocol"
)

func main() {
	if err := protocol.Run("status", "1.0.0", show); err != nil {
		os.Exit(1)
	}
}

func show(e *protocol.Emitter) error {
	if err := e.Progress(10, "Gathering system information"); err != nil {
		return err
	}

	log := zerolog.Nop()
	cfg := config.Load("", log)

	if err := e.Progress(30, "Scanning for tools"); err != nil {
		return err
	}
	reg := discovery.New(cfg.ToolsDirs, log).Discover()
	names := reg.Names()
	sort.Strings(names)

	if err := e.Progress(50, "Analyzing configuration"); err != nil {
		return err
	}

	configFile := "Using defaults"
	if _, err := os.Stat(config.DefaultPath); err == nil {
		configFile = config.DefaultPath
	}
	wd, _ := os.Getwd()

	info := map[string]any{
		"acor_version":      version.Version,
		"acor_codename":     version.Codename,
		"go_version":        runtime.Version(),
		"working_directory": wd,
		"config_file":       configFile,
		"configuration": map[string]any{
			"protocol_version":   cfg.Version,
			"timeout":            fmt.Sprintf("%d seconds", cfg.TimeoutSec),
			"tools_directories":  cfg.ToolsDirs,
			"strict_containment": cfg.StrictContainment,
		},
		"discovered_tools": map[string]any{
			"count": len(names),
			"tools": names,
		},
	}

	if err := e.Progress(75, "Checking tool directories"); err != nil {
		return err
	}
	var existing, missing []string
	for _, dir := range cfg.ToolsDirs {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			existing = append(existing, dir)
		} else {
			missing = append(missing, dir)
		}
	}
	info["directories"] = map[string]any{
		"existing": existing,
		"missing":  missing,
	}

	if err := e.Progress(90, "Preparing output"); err != nil {
		return err
	}
	if err := e.Output(info, protocol.FormatJSON); err != nil {
		return err
	}
	if err := e.Progress(100, "Status check complete"); err != nil {
		return err
	}

	var suggestions []string
	if len(names) == 0 {
		suggestions = append(suggestions,
			"Create tools in one of the configured directories",
			"Check that tool directories contain valid entry points (cli.py, main.py, or tool.py)")
	}
	if len(missing) > 0 {
		suggestions = append(suggestions,
			"Create missing directories: "+strings.Join(missing, ", "))
	}
	if len(names) < 3 {
		suggestions = append(suggestions, "Add more tools to expand capabilities")
	}
	if cfg.TimeoutSec == config.DefaultTimeoutSec {
		suggestions = append(suggestions,
			"Consider adjusting timeout in config for long-running tools")
	}
	if len(suggestions) > 0 {
		if err := e.Suggestions(suggestions, "Recommendations"); err != nil {
			return err
		}
	}

	if configFile == "Using defaults" {
		if err := e.AiDirective("Consider creating " + config.DefaultPath + " for custom configuration"); err != nil {
			return err
		}
	}
	if len(names) == 0 {
		if err := e.AiDirective("No tools found. Check tools_dirs configuration and ensure tools have proper entry points"); err != nil {
			return err
		}
	}
	return nil
}
