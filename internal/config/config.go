// Package config provides configuration loading for projctl.
//
// Values come from built-in defaults, an optional YAML file and PROJCTL_*
// environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the complete projctl configuration.
type Config struct {
	Registry  RegistryConfig  `koanf:"registry"`
	Logging   LoggingConfig   `koanf:"logging"`
	HTTP      HTTPConfig      `koanf:"http"`
	Toggl     TogglConfig     `koanf:"toggl"`
	Asana     AsanaConfig     `koanf:"asana"`
	Notion    NotionConfig    `koanf:"notion"`
	Timesheet TimesheetConfig `koanf:"timesheet"`
}

// RegistryConfig locates the user registry file. The extension selects the
// codec: .json or .toml.
type RegistryConfig struct {
	Path string `koanf:"path"`
}

// LoggingConfig holds the user-facing logging knobs.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

// HTTPConfig is shared by every service client.
type HTTPConfig struct {
	Timeout   Duration `koanf:"timeout"`
	RateLimit float64  `koanf:"rate_limit"` // requests per second
	Burst     int      `koanf:"burst"`
}

// TogglConfig holds Toggl Track credentials. Workspace is a name; empty
// means the account's default workspace.
type TogglConfig struct {
	APIToken  Secret `koanf:"api_token"`
	Workspace string `koanf:"workspace"`
	BaseURL   string `koanf:"base_url"`
}

// AsanaConfig holds Asana credentials and placement for new projects.
type AsanaConfig struct {
	APIToken  Secret `koanf:"api_token"`
	Workspace string `koanf:"workspace"`
	Team      string `koanf:"team"`
	Template  string `koanf:"template"`
	BaseURL   string `koanf:"base_url"`
}

// NotionConfig holds the Notion integration token and database IDs.
type NotionConfig struct {
	APIToken   Secret `koanf:"api_token"`
	ClientsDB  string `koanf:"clients_db"`
	ProjectsDB string `koanf:"projects_db"`
	BaseURL    string `koanf:"base_url"`
}

// TimesheetConfig locates the TOML file mapping projects to workorders.
type TimesheetConfig struct {
	Workorders string `koanf:"workorders"`
}

// Enabled reports whether Toggl credentials are configured.
func (c TogglConfig) Enabled() bool { return c.APIToken.IsSet() }

// Enabled reports whether Asana credentials are configured.
func (c AsanaConfig) Enabled() bool { return c.APIToken.IsSet() }

// Enabled reports whether Notion credentials are configured.
func (c NotionConfig) Enabled() bool { return c.APIToken.IsSet() }

const (
	defaultTimeout   = 30 * time.Second
	defaultRateLimit = 0.4 // one request every 2.5s
	defaultBurst     = 1
)

// DefaultDir returns ~/.config/projctl.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "projctl"), nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Registry.Path == "" {
		cfg.Registry.Path = "~/.config/projctl/users.json"
	}

	if cfg.Timesheet.Workorders == "" {
		cfg.Timesheet.Workorders = "~/.config/projctl/workorders.toml"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = Duration(defaultTimeout)
	}
	if cfg.HTTP.RateLimit == 0 {
		cfg.HTTP.RateLimit = defaultRateLimit
	}
	if cfg.HTTP.Burst == 0 {
		cfg.HTTP.Burst = defaultBurst
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []error

	if c.Registry.Path == "" {
		errs = append(errs, errors.New("registry.path is required"))
	} else if ext := strings.ToLower(filepath.Ext(c.Registry.Path)); ext != ".json" && ext != ".toml" {
		errs = append(errs, fmt.Errorf("registry.path must end in .json or .toml, got %q", c.Registry.Path))
	}

	if ext := strings.ToLower(filepath.Ext(c.Timesheet.Workorders)); ext != ".toml" {
		errs = append(errs, fmt.Errorf("timesheet.workorders must end in .toml, got %q", c.Timesheet.Workorders))
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		errs = append(errs, fmt.Errorf("logging.format must be 'json' or 'console', got %q", c.Logging.Format))
	}

	if c.HTTP.Timeout.Duration() <= 0 {
		errs = append(errs, errors.New("http.timeout must be positive"))
	}
	if c.HTTP.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("http.rate_limit must be positive, got %v", c.HTTP.RateLimit))
	}
	if c.HTTP.Burst < 1 {
		errs = append(errs, fmt.Errorf("http.burst must be >= 1, got %d", c.HTTP.Burst))
	}

	if c.Asana.Enabled() {
		if c.Asana.Workspace == "" {
			errs = append(errs, errors.New("asana.workspace is required when asana.api_token is set"))
		}
		if c.Asana.Team == "" {
			errs = append(errs, errors.New("asana.team is required when asana.api_token is set"))
		}
	}

	if c.Notion.Enabled() && c.Notion.ProjectsDB == "" {
		errs = append(errs, errors.New("notion.projects_db is required when notion.api_token is set"))
	}

	return errors.Join(errs...)
}
