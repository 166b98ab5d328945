// Package config loads the orchestrator configuration from .acor/config.yaml.
// A missing or malformed file is never fatal: defaults apply and a warning is
// logged, so a bad config cannot take the CLI down.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/acorhq/acor/internal/version"
)

// DefaultPath is consulted when no explicit config path is given.
const DefaultPath = ".acor/config.yaml"

// DefaultTimeoutSec bounds a single tool invocation.
const DefaultTimeoutSec = 120

// defaultToolsDirs are scanned in order when the config does not override them.
var defaultToolsDirs = []string{".acor/tools", "tools", "examples/tools"}

// allowedExpandVars is the whitelist of environment variables that may be
// expanded inside configured paths. Anything else expands to the empty string.
var allowedExpandVars = map[string]struct{}{
	"HOME":            {},
	"USER":            {},
	"ACOR_HOME":       {},
	"ACOR_TOOLS":      {},
	"XDG_CONFIG_HOME": {},
	"XDG_DATA_HOME":   {},
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Config is the orchestrator configuration with defaults applied.
type Config struct {
	// Version is the protocol version tag exported to children as ACOR_VERSION.
	Version string `yaml:"version"`
	// ToolsDirs are the allowed roots, scanned in order.
	ToolsDirs []string `yaml:"tools_dirs"`
	// TimeoutSec bounds one tool invocation.
	TimeoutSec int `yaml:"timeout"`
	// StrictContainment hard-fails a launch whose re-resolved entry point
	// falls outside every allowed root. When false (the default) the launch
	// proceeds with a logged security warning.
	StrictContainment bool `yaml:"strict_containment"`
	// JSFallback enables the embedded JavaScript interpreter for .js tools
	// when no system runtime is installed.
	JSFallback bool `yaml:"js_fallback"`
}

func defaults() *Config {
	return &Config{
		Version:    version.ProtocolVersion,
		ToolsDirs:  toolsDirsFromEnv(),
		TimeoutSec: DefaultTimeoutSec,
	}
}

// toolsDirsFromEnv returns the default roots, with ACOR_TOOLS entries
// prepended when set.
func toolsDirsFromEnv() []string {
	dirs := append([]string(nil), defaultToolsDirs...)
	if v := os.Getenv("ACOR_TOOLS"); v != "" {
		dirs = append(filepath.SplitList(v), dirs...)
	}
	return dirs
}

// Load reads the config at path, or DefaultPath when path is empty.
func Load(path string, log zerolog.Logger) *Config {
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("path", path).Err(err).Msg("cannot read config, using defaults")
		}
		return defaults()
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Warn().Str("path", path).Err(err).Msg("cannot parse config, using defaults")
		return defaults()
	}
	cfg.applyDefaults()
	cfg.expandPaths()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = version.ProtocolVersion
	}
	if len(c.ToolsDirs) == 0 {
		c.ToolsDirs = toolsDirsFromEnv()
	}
	if c.TimeoutSec <= 0 {
		c.TimeoutSec = DefaultTimeoutSec
	}
}

// expandPaths expands ${VAR} in tools_dirs entries against the whitelist.
func (c *Config) expandPaths() {
	for i, dir := range c.ToolsDirs {
		c.ToolsDirs[i] = expand(dir)
	}
}

func expand(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if _, ok := allowedExpandVars[name]; !ok {
			return ""
		}
		return os.Getenv(name)
	})
}
