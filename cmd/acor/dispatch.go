package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/acorhq/acor/internal/config"
	"github.com/acorhq/acor/internal/discovery"
	"github.com/acorhq/acor/internal/report"
	"github.com/acorhq/acor/internal/runner"
)

// auditDir is where per-invocation NDJSON audit lines accumulate.
const auditDir = ".acor/audit"

// app wires configuration, discovery, and the runner for one CLI invocation.
type app struct {
	cfg        *config.Config
	configPath string
	log        zerolog.Logger
	registry   *discovery.Registry
	stdout     io.Writer
	stderr     io.Writer
}

func newApp(configPath string, stdout, stderr io.Writer) *app {
	log := newLogger(stderr)
	cfg := config.Load(configPath, log)
	reg := discovery.New(cfg.ToolsDirs, log).Discover()
	return &app{
		cfg:        cfg,
		configPath: configPath,
		log:        log,
		registry:   reg,
		stdout:     stdout,
		stderr:     stderr,
	}
}

// command is either a native handler or a discovered tool's entry point.
type command struct {
	native func(*app, []string) int
	entry  string
}

// commands builds the dispatch map once per invocation: native commands
// first, then discovered tools. A tool cannot shadow a native name.
func (a *app) commands() map[string]command {
	m := map[string]command{
		"status":  {native: (*app).cmdStatus},
		"new":     {native: (*app).cmdNew},
		"list":    {native: (*app).cmdList},
		"version": {native: (*app).cmdVersion},
	}
	for _, name := range a.registry.Names() {
		if _, taken := m[name]; taken {
			a.log.Warn().Str("tool", name).Msg("tool name shadows a native command, skipping")
			continue
		}
		entry, _ := a.registry.Lookup(name)
		m[name] = command{entry: entry}
	}
	return m
}

func (a *app) dispatch(name string, args []string) int {
	cmd, ok := a.commands()[name]
	if !ok {
		report.Error(a.stderr, fmt.Sprintf("Tool not found: %s", name),
			"", "Run 'acor list' to see available tools")
		return runner.ExitToolNotFound
	}
	if cmd.native != nil {
		return cmd.native(a, args)
	}
	return a.runTool(cmd.entry, args)
}

func (a *app) runTool(entry string, args []string) int {
	if err := runner.Validate(entry); err != nil {
		report.Error(a.stderr, err.Error(), "", "")
		return runner.ExitValidationFailed
	}
	r := runner.New(
		runner.NewResolver(a.log),
		runner.NewAudit(auditDir),
		a.log,
		a.stdout,
	)
	res := r.Run(context.Background(), entry, args, runner.Options{
		TimeoutSec:        a.cfg.TimeoutSec,
		AllowedRoots:      a.cfg.ToolsDirs,
		VersionTag:        a.cfg.Version,
		StrictContainment: a.cfg.StrictContainment,
		JSFallback:        a.cfg.JSFallback,
	})
	return res.ExitCode
}
