// Package namespacing loads namespace-override pattern configuration for the
// Apex debug log parser.
//
// Log lines don't always carry a reliable namespace segment (SPEC_FULL.md
// section 12, apexlog.inferNamespace's 4+-segment ambiguity).
// Operators can supply explicit override patterns so that event text that
// matches a known shape is assigned a namespace deterministically instead of
// falling back to the parser's default heuristic.
//
// Example configuration (.apextrace.yaml):
//
//	namespace_patterns:
//	  - match: "{ns}.TriggerHandler.{method}"
//	    namespace: "{ns}"
package namespacing

import (
	"errors"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/apex-trace/apextrace/apexlog"
	"github.com/apex-trace/apextrace/internal/config"
)

// Config holds namespace pattern configuration loaded from .apextrace.yaml.
type Config struct {
	//nolint:tagliatelle // snake_case is intentional for YAML config files
	NamespacePatterns []apexlog.NamespacePattern `yaml:"namespace_patterns"`
}

const (
	// DefaultConfigPath is the default location for the namespace pattern
	// configuration file.
	DefaultConfigPath = ".apextrace.yaml"

	// ConfigPathEnvVar is the environment variable name for a custom config path.
	ConfigPathEnvVar = "APEXTRACE_CONFIG_PATH"
)

// LoadConfig loads pattern configuration from a YAML file at the given path.
//
// Behavior:
//   - Returns empty config (not error) if file doesn't exist - patterns are optional.
//   - Returns empty config + logs a warning if the YAML is invalid.
//   - Returns populated config on success.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		NamespacePatterns: []apexlog.NamespacePattern{},
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is from trusted config source
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("namespace config file not found, continuing without overrides",
				slog.String("path", path))

			return cfg, nil
		}

		slog.Warn("failed to read namespace config file, continuing without overrides",
			slog.String("path", path),
			slog.String("error", err.Error()))

		return cfg, nil
	}

	if len(data) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Warn("failed to parse namespace config file, continuing without overrides",
			slog.String("path", path),
			slog.String("error", err.Error()))

		return &Config{NamespacePatterns: []apexlog.NamespacePattern{}}, nil
	}

	if cfg.NamespacePatterns == nil {
		cfg.NamespacePatterns = []apexlog.NamespacePattern{}
	}

	return cfg, nil
}

// LoadConfigFromEnv loads config from the path specified in APEXTRACE_CONFIG_PATH,
// falling back to ".apextrace.yaml" in the current directory if unset.
func LoadConfigFromEnv() (*Config, error) {
	path := config.GetEnvStr(ConfigPathEnvVar, DefaultConfigPath)

	return LoadConfig(path)
}
