package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Output formats accepted by Output.Format. "auto" picks the terminal
// table on a TTY and markdown otherwise.
var Formats = []string{"auto", "markdown", "table", "json", "yaml", "html"}

// Config holds all application configuration
type Config struct {
	GitHub  GitHubConfig  `toml:"github"`
	Reaper  ReaperConfig  `toml:"reaper"`
	Output  OutputConfig  `toml:"output"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
}

// GitHubConfig holds API host and credentials
type GitHubConfig struct {
	Host           string   `toml:"host"`
	AppID          int64    `toml:"app_id"`
	PrivateKey     string   `toml:"private_key"`
	PrivateKeyPath string   `toml:"private_key_path"`
	Token          string   `toml:"token"`
	Repos          []string `toml:"repos"`
	RequestTimeout Duration `toml:"request_timeout"`
}

// ReaperConfig holds the selection policy
type ReaperConfig struct {
	ScanRangeDays   int      `toml:"scan_range_days"`
	TimeoutMinutes  float64  `toml:"timeout_minutes"`
	StoppableStates []string `toml:"stoppable_states"`
	Concurrency     int      `toml:"concurrency"`
	DryRun          bool     `toml:"dry_run"`
	Force           bool     `toml:"force"`
}

type OutputConfig struct {
	Format  string `toml:"format"`
	NoColor bool   `toml:"no_color"`
	// Paths of the GitHub Actions output and step summary files.
	GitHubOutput string `toml:"github_output"`
	StepSummary  string `toml:"step_summary"`
}

type LogConfig struct {
	Level string `toml:"level"`
	// Format is text, json, or auto (text on a terminal, json otherwise).
	Format string `toml:"format"`
	File   string `toml:"file"`
}

type MetricsConfig struct {
	File           string `toml:"file"`
	PushgatewayURL string `toml:"pushgateway_url"`
	Job            string `toml:"job"`
}

// Duration reads "30s"-style values from TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns a Config with the reaper's stock policy
func Default() *Config {
	return &Config{
		GitHub: GitHubConfig{
			Host:           "github.com",
			RequestTimeout: Duration{30 * time.Second},
		},
		Reaper: ReaperConfig{
			ScanRangeDays:   2,
			TimeoutMinutes:  200,
			StoppableStates: []string{"in_progress"},
			Concurrency:     1,
		},
		Output: OutputConfig{Format: "auto"},
		Log:    LogConfig{Level: "info", Format: "auto"},
		Metrics: MetricsConfig{
			Job: "gha_reaper",
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.GitHub.PrivateKeyPath = ExpandPath(cfg.GitHub.PrivateKeyPath)
	cfg.Metrics.File = ExpandPath(cfg.Metrics.File)
	cfg.Log.File = ExpandPath(cfg.Log.File)
	return cfg, nil
}

// ApplyEnv overlays environment variables. The GitHub Actions inputs of
// the workflow-cleaner action take precedence over its plain variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(keys ...string) (string, bool) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v), true
			}
		}
		return "", false
	}

	var errs []error
	if v, ok := get("INPUT_APP-ID", "GHA_WORKFLOWS_CLEANER_APP_ID", "GHA_REAPER_APP_ID"); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: app id %q is not a number", ErrInvalid, v))
		} else {
			c.GitHub.AppID = id
		}
	}
	if v, ok := get("INPUT_APP-PK", "GHA_WORKFLOWS_CLEANER_PRIVATE_KEY", "GHA_REAPER_PRIVATE_KEY"); ok {
		c.GitHub.PrivateKey = v
	}
	if v, ok := get("INPUT_SCAN-RANGE-DAYS", "GHA_REAPER_SCAN_RANGE_DAYS"); ok {
		days, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: scan range %q is not a whole number of days", ErrInvalid, v))
		} else {
			c.Reaper.ScanRangeDays = days
		}
	}
	if v, ok := get("INPUT_TIMEOUT-MINUTES", "GHA_REAPER_TIMEOUT_MINUTES"); ok {
		minutes, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: timeout %q is not a number of minutes", ErrInvalid, v))
		} else {
			c.Reaper.TimeoutMinutes = minutes
		}
	}
	if v, ok := get("GHA_REAPER_TOKEN", "GH_TOKEN", "GITHUB_TOKEN"); ok {
		c.GitHub.Token = v
	}
	if v, ok := get("GHA_REAPER_HOST", "GH_HOST"); ok {
		c.GitHub.Host = v
	}
	if v, ok := get("GHA_REAPER_REPOS"); ok {
		c.GitHub.Repos = SplitList(v)
	}
	if v, ok := get("GHA_REAPER_STOPPABLE_STATES"); ok {
		c.Reaper.StoppableStates = SplitList(v)
	}
	if v, ok := get("GHA_REAPER_OUTPUT"); ok {
		c.Output.Format = v
	}
	if v, ok := get("GITHUB_OUTPUT"); ok {
		c.Output.GitHubOutput = v
	}
	if v, ok := get("GITHUB_STEP_SUMMARY"); ok {
		c.Output.StepSummary = v
	}
	if _, ok := get("NO_COLOR"); ok {
		c.Output.NoColor = true
	}
	return errors.Join(errs...)
}

// PrivateKeyPEM returns the App key, reading PrivateKeyPath when no
// inline key is set. Escaped newlines, as stored in CI secrets, are
// restored.
func (c *Config) PrivateKeyPEM() ([]byte, error) {
	key := c.GitHub.PrivateKey
	if key == "" && c.GitHub.PrivateKeyPath != "" {
		data, err := os.ReadFile(c.GitHub.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		key = string(data)
	}
	return []byte(strings.ReplaceAll(key, `\n`, "\n")), nil
}

func (c *Config) hasKey() bool {
	return c.GitHub.PrivateKey != "" || c.GitHub.PrivateKeyPath != ""
}

// UsesApp reports whether App credentials are configured.
func (c *Config) UsesApp() bool {
	return c.GitHub.AppID != 0 && c.hasKey()
}

// Validate reports every problem at once; each wraps ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Reaper.ScanRangeDays < 1 {
		invalid("scan_range_days must be at least 1, got %d", c.Reaper.ScanRangeDays)
	}
	if c.Reaper.TimeoutMinutes <= 0 {
		invalid("timeout_minutes must be positive, got %v", c.Reaper.TimeoutMinutes)
	}
	if len(c.Reaper.StoppableStates) == 0 {
		invalid("stoppable_states must not be empty")
	}
	if c.Reaper.Concurrency < 0 {
		invalid("concurrency must not be negative, got %d", c.Reaper.Concurrency)
	}
	if c.GitHub.RequestTimeout.Duration <= 0 {
		invalid("request_timeout must be positive, got %s", c.GitHub.RequestTimeout)
	}

	switch {
	case (c.GitHub.AppID != 0) != c.hasKey():
		invalid("App credentials need both an app id and a private key")
	case !c.UsesApp() && len(c.GitHub.Repos) == 0:
		invalid("no credentials: set App credentials, or a token (or gh login) with repositories")
	}
	for _, repo := range c.GitHub.Repos {
		owner, name, ok := strings.Cut(repo, "/")
		if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			invalid("repository %q is not owner/name", repo)
		}
	}

	if !slices.Contains(Formats, c.Output.Format) {
		invalid("unknown output format %q (want one of %s)", c.Output.Format, strings.Join(Formats, ", "))
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		invalid("unknown log level %q", c.Log.Level)
	}
	if !slices.Contains([]string{"auto", "text", "json"}, c.Log.Format) {
		invalid("unknown log format %q", c.Log.Format)
	}
	return errors.Join(errs...)
}

// SplitList splits a comma or newline separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' }) {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gha-reaper", "config.toml")
}
