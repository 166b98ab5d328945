package main

import (
	"fmt"
	"sort"

	"github.com/acorhq/acor/internal/runner"
	"github.com/acorhq/acor/internal/version"
)

// cmdList prints the discovered tools, one per line, with their entry
// points. Native commands are not listed; they are always available.
func (a *app) cmdList(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(a.stderr, "acor list: unexpected argument %s\n", args[0])
		return runner.ExitInvalidArgument
	}

	names := a.registry.Names()
	sort.Strings(names)
	if len(names) == 0 {
		fmt.Fprintln(a.stdout, "No tools discovered.")
		fmt.Fprintln(a.stdout, "Run 'acor status' to inspect the configured directories.")
		return runner.ExitSuccess
	}
	for _, name := range names {
		entry, _ := a.registry.Lookup(name)
		fmt.Fprintf(a.stdout, "%-24s %s\n", name, entry)
	}
	return runner.ExitSuccess
}

func (a *app) cmdVersion(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(a.stderr, "acor version: unexpected argument %s\n", args[0])
		return runner.ExitInvalidArgument
	}
	fmt.Fprintf(a.stdout, "acor version %s (%s, %s)\n",
		version.Version, version.Codename, version.ReleaseDate)
	return runner.ExitSuccess
}
