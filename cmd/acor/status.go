package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/acorhq/acor/internal/config"
	"github.com/acorhq/acor/internal/discovery"
	"github.com/acorhq/acor/internal/runner"
	"github.com/acorhq/acor/internal/version"
)

type dirStatus struct {
	Path      string `json:"path"`
	Exists    bool   `json:"exists"`
	ToolCount int    `json:"tool_count"`
}

type statusInfo struct {
	Version          string `json:"acor_version"`
	Codename         string `json:"acor_codename"`
	GoVersion        string `json:"go_version"`
	WorkingDirectory string `json:"working_directory"`
	ConfigFile       string `json:"config_file"`
	Configuration    struct {
		ProtocolVersion string   `json:"protocol_version"`
		Timeout         int      `json:"timeout"`
		ToolsDirs       []string `json:"tools_directories"`
	} `json:"configuration"`
	DiscoveredTools struct {
		Count int      `json:"count"`
		Tools []string `json:"tools"`
	} `json:"discovered_tools"`
	Directories struct {
		Existing []string    `json:"existing"`
		Missing  []string    `json:"missing"`
		Details  []dirStatus `json:"details"`
	} `json:"directories"`
}

// cmdStatus reports version, configuration, and per-directory discovery
// counts. With --json the full report is machine readable.
func (a *app) cmdStatus(args []string) int {
	asJSON := false
	for _, arg := range args {
		switch arg {
		case "--json", "-json":
			asJSON = true
		default:
			fmt.Fprintf(a.stderr, "acor status: unknown argument %s\n", arg)
			return runner.ExitInvalidArgument
		}
	}

	info := a.collectStatus()

	if asJSON {
		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(a.stderr, "acor status: %v\n", err)
			return runner.ExitGeneralError
		}
		fmt.Fprintln(a.stdout, string(out))
		return runner.ExitSuccess
	}

	a.printStatus(info)
	return runner.ExitSuccess
}

func (a *app) collectStatus() statusInfo {
	var info statusInfo
	info.Version = version.Version
	info.Codename = version.Codename
	info.GoVersion = runtime.Version()
	if wd, err := os.Getwd(); err == nil {
		info.WorkingDirectory = wd
	}
	info.ConfigFile = configFileLabel(a.configPath)

	info.Configuration.ProtocolVersion = a.cfg.Version
	info.Configuration.Timeout = a.cfg.TimeoutSec
	info.Configuration.ToolsDirs = a.cfg.ToolsDirs

	names := a.registry.Names()
	sort.Strings(names)
	info.DiscoveredTools.Count = len(names)
	info.DiscoveredTools.Tools = names

	for _, dir := range a.cfg.ToolsDirs {
		st, err := os.Stat(dir)
		if err != nil || !st.IsDir() {
			info.Directories.Missing = append(info.Directories.Missing, dir)
			info.Directories.Details = append(info.Directories.Details, dirStatus{Path: dir})
			continue
		}
		count := discovery.New([]string{dir}, a.log).Discover().Len()
		info.Directories.Existing = append(info.Directories.Existing, dir)
		info.Directories.Details = append(info.Directories.Details, dirStatus{
			Path: dir, Exists: true, ToolCount: count,
		})
	}
	return info
}

func (a *app) printStatus(info statusInfo) {
	rule := strings.Repeat("-", 50)

	fmt.Fprintln(a.stdout, "ACOR Status")
	fmt.Fprintln(a.stdout, strings.Repeat("=", 50))
	fmt.Fprintf(a.stdout, "Version:    %s (%s)\n", info.Version, info.Codename)
	fmt.Fprintf(a.stdout, "Go:         %s\n", info.GoVersion)
	fmt.Fprintf(a.stdout, "Config:     %s\n", info.ConfigFile)
	fmt.Fprintf(a.stdout, "Directory:  %s\n", info.WorkingDirectory)
	fmt.Fprintln(a.stdout)

	fmt.Fprintln(a.stdout, "Configuration")
	fmt.Fprintln(a.stdout, rule)
	fmt.Fprintf(a.stdout, "Protocol:   v%s\n", info.Configuration.ProtocolVersion)
	fmt.Fprintf(a.stdout, "Timeout:    %ds\n", info.Configuration.Timeout)
	fmt.Fprintln(a.stdout)

	fmt.Fprintf(a.stdout, "Discovered Tools (%d)\n", info.DiscoveredTools.Count)
	fmt.Fprintln(a.stdout, rule)
	if len(info.DiscoveredTools.Tools) == 0 {
		fmt.Fprintln(a.stdout, "  (none found)")
	}
	for _, name := range info.DiscoveredTools.Tools {
		fmt.Fprintf(a.stdout, "  + %s\n", name)
	}
	fmt.Fprintln(a.stdout)

	fmt.Fprintln(a.stdout, "Tool Directories")
	fmt.Fprintln(a.stdout, rule)
	for _, d := range info.Directories.Details {
		if !d.Exists {
			fmt.Fprintf(a.stdout, "  x %-20s (missing)\n", d.Path)
			continue
		}
		noun := "tools"
		if d.ToolCount == 1 {
			noun = "tool"
		}
		fmt.Fprintf(a.stdout, "  + %-20s (%d %s)\n", d.Path, d.ToolCount, noun)
	}

	a.printRecommendations(info)
}

func (a *app) printRecommendations(info statusInfo) {
	toolCount := info.DiscoveredTools.Count
	if len(info.Directories.Missing) == 0 && toolCount >= 2 {
		return
	}

	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, "Recommendations")
	fmt.Fprintln(a.stdout, strings.Repeat("-", 50))
	if toolCount == 0 {
		fmt.Fprintln(a.stdout, "  * Create tools in one of the configured directories")
		fmt.Fprintln(a.stdout, "  * Ensure tools have entry points (cli.py, main.py, tool.py)")
	} else if toolCount < 2 {
		fmt.Fprintln(a.stdout, "  * Add more tools to expand capabilities")
	}
	if len(info.Directories.Missing) > 0 {
		fmt.Fprintln(a.stdout, "  * Create missing directories or update config")
	}
	if _, err := os.Stat(a.configPathOrDefault()); err != nil {
		fmt.Fprintf(a.stdout, "  * Create %s for project configuration\n", a.configPathOrDefault())
	}
}

func (a *app) configPathOrDefault() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.DefaultPath
}
