package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, `registry:
  path: /srv/projctl/users.toml
logging:
  level: debug
  format: json
http:
  timeout: 10s
  rate_limit: 2
toggl:
  api_token: tg-token
  workspace: Lab
asana:
  api_token: as-token
  workspace: lab.example.org
  team: Research
  template: Default Project
notion:
  api_token: secret_notion
  clients_db: 0c1b
  projects_db: 9a7f
`, 0600)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/projctl/users.toml", cfg.Registry.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout.Duration())
	assert.Equal(t, 2.0, cfg.HTTP.RateLimit)
	assert.Equal(t, 1, cfg.HTTP.Burst)

	assert.True(t, cfg.Toggl.Enabled())
	assert.Equal(t, "tg-token", cfg.Toggl.APIToken.Value())
	assert.Equal(t, "Lab", cfg.Toggl.Workspace)

	assert.Equal(t, "Research", cfg.Asana.Team)
	assert.Equal(t, "Default Project", cfg.Asana.Template)

	assert.Equal(t, "9a7f", cfg.Notion.ProjectsDB)
	assert.Equal(t, "0c1b", cfg.Notion.ClientsDB)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "~/.config/projctl/users.json", cfg.Registry.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout.Duration())
	assert.Equal(t, 0.4, cfg.HTTP.RateLimit)
	assert.False(t, cfg.Toggl.Enabled())
	assert.False(t, cfg.Asana.Enabled())
	assert.False(t, cfg.Notion.Enabled())
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	path := writeConfig(t, `toggl:
  api_token: from-file
  workspace: Lab
`, 0600)

	t.Setenv("PROJCTL_TOGGL_API_TOKEN", "from-env")
	t.Setenv("PROJCTL_HTTP_TIMEOUT", "15")
	t.Setenv("PROJCTL_REGISTRY_PATH", "/tmp/users.toml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Toggl.APIToken.Value())
	assert.Equal(t, "Lab", cfg.Toggl.Workspace)
	assert.Equal(t, 15*time.Second, cfg.HTTP.Timeout.Duration())
	assert.Equal(t, "/tmp/users.toml", cfg.Registry.Path)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "toggl: [unclosed\n", 0600)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestLoad_Validation(t *testing.T) {
	path := writeConfig(t, `asana:
  api_token: as-token
logging:
  format: xml
`, 0600)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "asana.workspace is required")
	assert.Contains(t, err.Error(), "asana.team is required")
	assert.Contains(t, err.Error(), "logging.format")
}

func TestLoad_InsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission model differs on windows")
	}
	path := writeConfig(t, "logging:\n  level: info\n", 0644)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insecure config file permissions")
}

func TestLoad_ReadOnlyPermissions(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: info\n", 0400)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileTooLarge(t *testing.T) {
	large := "# " + strings.Repeat("x", maxConfigFileSize) + "\n"
	path := writeConfig(t, large, 0600)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file too large")
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"PROJCTL_TOGGL_API_TOKEN":   "toggl.api_token",
		"PROJCTL_NOTION_CLIENTS_DB": "notion.clients_db",
		"PROJCTL_HTTP_BURST":        "http.burst",
		"PROJCTL_VERBOSE":           "verbose",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}
