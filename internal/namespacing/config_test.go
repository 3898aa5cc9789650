package namespacing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "apextrace.yaml")

	content := `
namespace_patterns:
  - match: "{ns}.TriggerHandler.{method}"
    namespace: "{ns}"
  - match: "Legacy{rest*}"
    namespace: "legacy"
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := LoadConfig(configPath)

	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Len(t, cfg.NamespacePatterns, 2)
	assert.Equal(t, "{ns}.TriggerHandler.{method}", cfg.NamespacePatterns[0].Match)
	assert.Equal(t, "{ns}", cfg.NamespacePatterns[0].Namespace)
	assert.Equal(t, "legacy", cfg.NamespacePatterns[1].Namespace)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/apextrace.yaml")

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.NamespacePatterns)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "apextrace.yaml")

	content := `
namespace_patterns:
  - match: [invalid yaml
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := LoadConfig(configPath)

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.NamespacePatterns)
}

func TestLoadConfig_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "apextrace.yaml")

	require.NoError(t, os.WriteFile(configPath, []byte(""), 0644))

	cfg, err := LoadConfig(configPath)

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.NamespacePatterns)
}

func TestLoadConfig_NoPatternsKey(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "apextrace.yaml")

	content := `
some_other_config:
  key: value
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := LoadConfig(configPath)

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.NamespacePatterns)
}

func TestLoadConfigFromEnv_CustomPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom-config.yaml")

	content := `
namespace_patterns:
  - match: "{ns}.Svc"
    namespace: "{ns}"
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	t.Setenv(ConfigPathEnvVar, configPath)

	cfg, err := LoadConfigFromEnv()

	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Len(t, cfg.NamespacePatterns, 1)
	assert.Equal(t, "{ns}.Svc", cfg.NamespacePatterns[0].Match)
}

func TestLoadConfigFromEnv_DefaultPath(t *testing.T) {
	os.Unsetenv(ConfigPathEnvVar)

	cfg, err := LoadConfigFromEnv()

	require.NoError(t, err)
	require.NotNil(t, cfg)
}
