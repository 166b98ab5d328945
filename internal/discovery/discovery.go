// Package discovery scans the configured tool roots and builds the registry
// of launchable tools. Every rejection here is a non-fatal skip: a bad entry
// is logged and omitted, never surfaced as an error to the caller.
package discovery

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/acorhq/acor/internal/safepath"
)

// EntryPoints are the recognized entry-point filenames, in priority order.
// The first one present in a tool directory wins.
var EntryPoints = []string{
	"cli.py",
	"main.py",
	"tool.py",
	"cli.sh",
	"tool.sh",
	"cli.js",
	"tool.js",
}

// Registry is an ordered name -> resolved entry point mapping built by one
// discovery pass. Insertion order follows directory scan order and the first
// registration for a name wins; later roots cannot override it.
type Registry struct {
	names   []string
	entries map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]string)}
}

// Lookup returns the entry point registered for name.
func (r *Registry) Lookup(name string) (string, bool) {
	p, ok := r.entries[name]
	return p, ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.names) }

func (r *Registry) register(name, entry string) bool {
	if _, exists := r.entries[name]; exists {
		return false
	}
	r.entries[name] = entry
	r.names = append(r.names, name)
	return true
}

// Discoverer scans an ordered list of allowed roots for tools.
type Discoverer struct {
	roots []string
	log   zerolog.Logger
}

// New builds a Discoverer over roots. The root order is significant: earlier
// roots shadow later ones for duplicate tool names.
func New(roots []string, log zerolog.Logger) *Discoverer {
	return &Discoverer{roots: roots, log: log}
}

// Discover walks every root and returns the resulting registry. A missing or
// non-directory root is skipped; an empty root list yields an empty registry.
func (d *Discoverer) Discover() *Registry {
	reg := NewRegistry()
	for _, root := range d.roots {
		d.scanRoot(root, reg)
	}
	return reg
}

func (d *Discoverer) scanRoot(root string, reg *Registry) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		d.log.Debug().Str("root", root).Msg("tools root missing, skipping")
		return
	}
	items, err := os.ReadDir(root)
	if err != nil {
		d.log.Warn().Str("root", root).Err(err).Msg("cannot read tools root")
		return
	}
	for _, item := range items {
		if !item.IsDir() && !isDirSymlink(filepath.Join(root, item.Name())) {
			continue
		}
		name := item.Name()
		if !safepath.ValidName(name) {
			d.log.Warn().
				Str("event", "name_rejected").
				Str("root", root).
				Str("name", name).
				Msg("tool name failed validation")
			continue
		}
		subdir := filepath.Join(root, name)
		// A symlinked subdirectory pointing outside the root is an escape.
		if !safepath.ContainedIn(subdir, root) {
			d.log.Warn().
				Str("event", "path_escape").
				Str("root", root).
				Str("dir", subdir).
				Msg("tool directory resolves outside its root")
			continue
		}
		entry, ok := findEntry(subdir)
		if !ok {
			continue
		}
		if !safepath.ContainedIn(entry, subdir) {
			d.log.Warn().
				Str("event", "path_escape").
				Str("dir", subdir).
				Str("entry", entry).
				Msg("entry point resolves outside its tool directory")
			continue
		}
		if reg.register(name, entry) {
			d.log.Debug().Str("tool", name).Str("entry", entry).Msg("registered tool")
		}
	}
}

// findEntry locates the entry point for one tool directory: first match from
// the priority list, otherwise the first regular file (sorted by name) with
// the executable bit set.
func findEntry(dir string) (string, bool) {
	for _, candidate := range EntryPoints {
		p := filepath.Join(dir, candidate)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	items, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name() < items[j].Name() })
	for _, item := range items {
		p := filepath.Join(dir, item.Name())
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if info.Mode().Perm()&0o111 != 0 {
			return p, true
		}
	}
	return "", false
}

// isDirSymlink reports whether p is a symlink that resolves to a directory.
// Such entries are still candidates; the containment check decides whether
// the target is acceptable.
func isDirSymlink(p string) bool {
	fi, err := os.Lstat(p)
	if err != nil || fi.Mode()&os.ModeSymlink == 0 {
		return false
	}
	target, err := os.Stat(p)
	return err == nil && target.IsDir()
}
