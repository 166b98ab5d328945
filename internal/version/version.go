// Package version carries the acor release identity.
//
// Version format: MAJOR.MINOR.REVISION
//   - MAJOR: breaking, incompatible changes
//   - MINOR: new features, backwards compatible
//   - REVISION: bug fixes and patches
package version

import "fmt"

const (
	Major    = 0
	Minor    = 1
	Revision = 0

	// Codename is set for major releases.
	Codename    = "Genesis"
	ReleaseDate = "2025-01-05"

	// ProtocolVersion is the conversation protocol revision tools speak.
	ProtocolVersion = "1"
)

// Version is the full semantic version string.
var Version = fmt.Sprintf("%d.%d.%d", Major, Minor, Revision)

// Info returns detailed version metadata for status reporting.
func Info() map[string]any {
	return map[string]any{
		"major":        Major,
		"minor":        Minor,
		"revision":     Revision,
		"version":      Version,
		"release_date": ReleaseDate,
		"codename":     Codename,
	}
}
