// Command acor discovers external tools in configured directories and runs
// one of them per invocation, forwarding its conversation-protocol output to
// the orchestrating agent.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/acorhq/acor/internal/config"
	"github.com/acorhq/acor/internal/runner"
	"github.com/acorhq/acor/internal/version"
)

func main() {
	// Best-effort: a local .env may carry ACOR_* settings for development.
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

const usageText = `acor - AI-CLI Orchestration Runner

Execute tools that communicate with AI agents via conversational protocol.
Tools are discovered from configured directories and exposed as commands.

Usage:
  acor [--config PATH] <command> [args...]

Native commands:
  status    Display system status and configuration
  list      List discovered tools
  new       Create a new tool skeleton
  version   Print the acor version

Any other command name runs the discovered tool of that name.
`

func run(args []string, stdout, stderr io.Writer) int {
	var configPath string

	// Global flags precede the command name; everything after it belongs to
	// the tool untouched.
	i := 0
	for ; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--config" || arg == "-config":
			if i+1 >= len(args) {
				fmt.Fprintln(stderr, "acor: --config requires a path")
				return runner.ExitInvalidArgument
			}
			i++
			configPath = args[i]
		case strings.HasPrefix(arg, "--config="):
			configPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--version" || arg == "-version":
			fmt.Fprintf(stdout, "acor version %s\n", version.Version)
			return runner.ExitSuccess
		case arg == "--help" || arg == "-help" || arg == "-h":
			fmt.Fprint(stdout, usageText)
			return runner.ExitSuccess
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(stderr, "acor: unknown flag %s\n", arg)
			return runner.ExitInvalidArgument
		default:
			a := newApp(configPath, stdout, stderr)
			return a.dispatch(arg, args[i+1:])
		}
	}

	fmt.Fprint(stdout, usageText)
	return runner.ExitSuccess
}

// newLogger builds the stderr console logger; level comes from
// ACOR_LOG_LEVEL and defaults to warn.
func newLogger(stderr io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if v := os.Getenv("ACOR_LOG_LEVEL"); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}
	output := zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}
	return zerolog.New(output).With().Timestamp().Str("app", "acor").Logger().Level(level)
}

func configFileLabel(path string) string {
	if path != "" {
		return path
	}
	if _, err := os.Stat(config.DefaultPath); err == nil {
		return config.DefaultPath
	}
	return "Using defaults"
}
