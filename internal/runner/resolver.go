package runner

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"
)

// ErrInterpreterNotFound means no trusted or PATH source yielded a usable
// interpreter binary. It is fatal for the single invocation, not the process.
var ErrInterpreterNotFound = errors.New("interpreter not found")

// trustedInterpreterDirs are absolute install locations checked before any
// PATH lookup. PATH is the weakest-assurance source and is only consulted
// when none of these contain the interpreter.
var trustedInterpreterDirs = []string{
	"/usr/local/bin",
	"/usr/bin",
	"/bin",
	"/opt/homebrew/bin",
}

// interpreters maps an entry-point extension to candidate interpreter names,
// tried in order.
var interpreters = map[string][]string{
	".py": {"python3", "python"},
	".sh": {"bash", "sh"},
	".js": {"node", "nodejs"},
}

// Resolver turns an entry-point path into the launch-command prefix.
type Resolver struct {
	log zerolog.Logger
}

// NewResolver builds a Resolver reporting through log.
func NewResolver(log zerolog.Logger) *Resolver {
	return &Resolver{log: log}
}

// CommandFor returns the argv prefix for entry: [interpreter] for recognized
// script extensions, or nil for a directly executable file. The entry path
// itself and user arguments are appended by the caller.
func (r *Resolver) CommandFor(entry string) ([]string, error) {
	ext := filepath.Ext(entry)
	names, ok := interpreters[ext]
	if !ok {
		// No recognized extension: assume directly executable.
		return nil, nil
	}
	path, err := r.findInterpreter(names)
	if err != nil {
		return nil, fmt.Errorf("%w for %s (needed by %s)", ErrInterpreterNotFound, ext, filepath.Base(entry))
	}
	return []string{path}, nil
}

// findInterpreter searches the trusted directories first and only then falls
// back to PATH. The fallback is recorded as a security-relevant event.
func (r *Resolver) findInterpreter(names []string) (string, error) {
	for _, name := range names {
		for _, dir := range trustedInterpreterDirs {
			candidate := filepath.Join(dir, name)
			if isExecutableFile(candidate) {
				return candidate, nil
			}
		}
	}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			r.log.Warn().
				Str("event", "interpreter_path_fallback").
				Str("interpreter", name).
				Str("found", path).
				Msg("using PATH lookup for interpreter")
			return path, nil
		}
	}
	return "", ErrInterpreterNotFound
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}
