package runner

import (
	"fmt"
	"os"
	"path/filepath"
)

// Validate checks that entry exists, is a regular file, and is launchable:
// recognized script extensions run under an interpreter, anything else needs
// the executable bit.
func Validate(entry string) error {
	info, err := os.Stat(entry)
	if err != nil {
		return fmt.Errorf("tool not found: %s", entry)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("tool path is not a file: %s", entry)
	}
	if _, ok := interpreters[filepath.Ext(entry)]; ok {
		return nil
	}
	if info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("tool is not executable: %s", entry)
	}
	return nil
}
