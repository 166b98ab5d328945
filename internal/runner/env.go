package runner

import "os"

// envWhitelist names the only parent variables a child may see. The child
// environment is built additively from this list, never by copying the parent
// environment and pruning it.
var envWhitelist = []string{
	"PATH",
	"HOME",
	"USER",
	"LANG",
	"LC_ALL",
	"PYTHONPATH",
	"NODE_PATH",
	"ACOR_OUTPUT_MODE",
}

// buildEnv constructs the child environment from the whitelist plus the
// orchestrator version tag.
func buildEnv(versionTag string) []string {
	env := make([]string, 0, len(envWhitelist)+1)
	for _, key := range envWhitelist {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}
	env = append(env, "ACOR_VERSION="+versionTag)
	return env
}
