// Package safepath provides the pure containment and name-validation checks
// used during tool discovery and again immediately before execution. It has
// no side effects: callers decide whether a failed check is a skip, a
// warning, or a hard error.
package safepath

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxNameLength bounds tool names to keep registry keys and scaffold paths sane.
const MaxNameLength = 50

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidName reports whether name is an acceptable tool identifier.
// The character class excludes path separators and "..", so a valid name can
// never traverse out of its directory.
func ValidName(name string) bool {
	if name == "" || len(name) > MaxNameLength {
		return false
	}
	return namePattern.MatchString(name)
}

// Resolve returns the canonical, symlink-free absolute form of path.
// Broken symlinks, missing files, and permission errors all surface as
// errors; callers treat an unresolvable path as invalid rather than retry.
func Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// ContainedIn reports whether path, after symlink resolution, is root itself
// or a strict descendant of root. The comparison appends a separator to the
// resolved root so that "/allowed-evil" never matches "/allowed".
func ContainedIn(path, root string) bool {
	resolvedPath, err := Resolve(path)
	if err != nil {
		return false
	}
	resolvedRoot, err := Resolve(root)
	if err != nil {
		return false
	}
	if resolvedPath == resolvedRoot {
		return true
	}
	sep := string(os.PathSeparator)
	if !strings.HasSuffix(resolvedRoot, sep) {
		resolvedRoot += sep
	}
	return strings.HasPrefix(resolvedPath, resolvedRoot)
}

// ContainedInAny reports whether path is contained in at least one of roots.
func ContainedInAny(path string, roots []string) bool {
	for _, root := range roots {
		if ContainedIn(path, root) {
			return true
		}
	}
	return false
}
