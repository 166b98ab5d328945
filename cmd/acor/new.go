package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/acorhq/acor/internal/runner"
	"github.com/acorhq/acor/internal/safepath"
	"github.com/acorhq/acor/internal/scaffold"
)

// cmdNew scaffolds a tool skeleton from embedded templates. The AI flavor
// speaks the conversation protocol; --human produces plain output.
func (a *app) cmdNew(args []string) int {
	var (
		name   string
		path   string
		kind   = scaffold.KindAI
		sawDir bool
	)

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--path" || arg == "-path":
			if i+1 >= len(args) {
				fmt.Fprintln(a.stderr, "acor new: --path requires a directory")
				return runner.ExitInvalidArgument
			}
			i++
			path = args[i]
			sawDir = true
		case strings.HasPrefix(arg, "--path="):
			path = strings.TrimPrefix(arg, "--path=")
			sawDir = true
		case arg == "--ai":
			kind = scaffold.KindAI
		case arg == "--human":
			kind = scaffold.KindHuman
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(a.stderr, "acor new: unknown flag %s\n", arg)
			return runner.ExitInvalidArgument
		case name == "":
			name = arg
		default:
			fmt.Fprintf(a.stderr, "acor new: unexpected argument %s\n", arg)
			return runner.ExitInvalidArgument
		}
	}

	if name == "" {
		fmt.Fprintln(a.stderr, "acor new: tool name required")
		return runner.ExitInvalidArgument
	}
	if !safepath.ValidName(name) {
		fmt.Fprintf(a.stderr, "Error: Invalid tool name %q\n", name)
		fmt.Fprintln(a.stderr, "Tool names must contain only letters, numbers, underscores, and hyphens")
		return runner.ExitInvalidArgument
	}

	if !sawDir {
		switch len(a.cfg.ToolsDirs) {
		case 0:
			fmt.Fprintln(a.stderr, "Error: No tools directories configured")
			fmt.Fprintln(a.stderr, "Please configure tools_dirs in .acor/config.yaml")
			return runner.ExitInvalidConfig
		case 1:
			path = a.cfg.ToolsDirs[0]
		default:
			fmt.Fprintln(a.stderr, "Error: Multiple tools directories configured. Please specify one with --path:")
			fmt.Fprintln(a.stderr)
			for _, dir := range a.cfg.ToolsDirs {
				fmt.Fprintf(a.stderr, "  * %s\n", dir)
			}
			fmt.Fprintln(a.stderr)
			fmt.Fprintf(a.stderr, "Example: acor new %s --path %s\n", name, a.cfg.ToolsDirs[0])
			return runner.ExitInvalidArgument
		}
	}

	if _, err := os.Stat(filepath.Join(path, name)); err == nil {
		fmt.Fprintf(a.stderr, "Error: Directory %q already exists\n", filepath.Join(path, name))
		return runner.ExitValidationFailed
	}

	created, err := scaffold.Create(path, name, kind)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error creating tool: %v\n", err)
		return runner.ExitGeneralError
	}

	fmt.Fprintf(a.stdout, "Created new tool %q in %s\n", name, filepath.Join(path, name))
	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, "Files created:")
	for _, f := range created {
		fmt.Fprintf(a.stdout, "  * %s\n", f)
	}
	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, "Next steps:")
	fmt.Fprintf(a.stdout, "  1. Edit %s to implement your tool logic\n", filepath.Join(path, name, "cli.sh"))
	fmt.Fprintf(a.stdout, "  2. Update %s with documentation\n", filepath.Join(path, name, "README.md"))
	fmt.Fprintf(a.stdout, "  3. Test with: acor %s\n", name)
	return runner.ExitSuccess
}
