package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/altinukshini/gha-reaper/internal/config"
)

var version = "dev"

func init() {
	if version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gha-reaper",
		Short: "Cancel GitHub Actions workflow runs that have been running too long",
		Long: `gha-reaper lists recent workflow runs in every repository it can reach,
cancels the ones that have been in a stoppable state for longer than the
timeout, and prints an audit report of every cancellation attempt.

Credentials come from a GitHub App (app id and private key), in which case
every installation and repository of the App is scanned, or from a token
(or the gh CLI login) together with an explicit --repo list.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), os.LookupEnv)
			if err != nil {
				return err
			}
			interactive, _ := cmd.Flags().GetBool("interactive")
			return run(cmd.Context(), cfg, interactive)
		},
	}

	f := cmd.Flags()
	f.String("config", "", "Path to a TOML config file (default "+config.DefaultConfigPath()+")")
	f.String("host", "", "GitHub hostname, for GitHub Enterprise Server")
	f.Int64("app-id", 0, "GitHub App id")
	f.String("private-key-file", "", "Path to the GitHub App private key (PEM)")
	f.String("token", "", "Token for token mode (defaults to GH_TOKEN/GITHUB_TOKEN, then the gh login)")
	f.StringSlice("repo", nil, "Repository to scan in token mode, owner/name (repeatable)")
	f.Int("scan-range-days", 0, "Only consider runs created within this many days (default 2)")
	f.Float64("timeout-minutes", 0, "Cancel runs older than this many minutes (default 200)")
	f.StringSlice("state", nil, "Stoppable run status (repeatable, default in_progress)")
	f.Int("concurrency", 0, "Repositories processed in parallel (default 1)")
	f.Duration("request-timeout", 0, "Timeout for each GitHub API request (default 30s)")
	f.Bool("dry-run", false, "Report stop candidates without cancelling them")
	f.Bool("force", false, "Use force-cancel, which also stops always() steps")
	f.StringP("output", "o", "", "Report format: auto, markdown, table, json, yaml, html")
	f.Bool("no-color", false, "Disable colored output")
	f.String("log-level", "", "Log level: debug, info, warn, error")
	f.String("log-format", "", "Log format: auto, text, json")
	f.String("log-file", "", "Write logs to this file instead of stderr")
	f.String("metrics-file", "", "Write Prometheus metrics to this textfile-collector file")
	f.String("pushgateway-url", "", "Push Prometheus metrics to this Pushgateway")
	f.BoolP("interactive", "i", false, "Confirm before cancelling and show live progress")
	return cmd
}

// loadConfig layers defaults, the config file, the environment and
// explicitly set flags, in that order.
func loadConfig(flags *pflag.FlagSet, lookup func(string) (string, bool)) (*config.Config, error) {
	path, _ := flags.GetString("config")
	explicit := path != ""
	if !explicit {
		if v, ok := lookup("GHA_REAPER_CONFIG"); ok && v != "" {
			path, explicit = v, true
		} else {
			path = config.DefaultConfigPath()
		}
	}
	if explicit {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	if err := applyFlags(cfg, flags); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config, flags *pflag.FlagSet) error {
	var err error
	set := func(name string, apply func()) {
		if err == nil && flags.Changed(name) {
			apply()
		}
	}
	str := func(name string) string {
		v, e := flags.GetString(name)
		err = e
		return v
	}

	set("host", func() { cfg.GitHub.Host = str("host") })
	set("app-id", func() { cfg.GitHub.AppID, err = flags.GetInt64("app-id") })
	set("private-key-file", func() {
		cfg.GitHub.PrivateKeyPath = config.ExpandPath(str("private-key-file"))
		cfg.GitHub.PrivateKey = ""
	})
	set("token", func() { cfg.GitHub.Token = str("token") })
	set("repo", func() { cfg.GitHub.Repos, err = flags.GetStringSlice("repo") })
	set("scan-range-days", func() { cfg.Reaper.ScanRangeDays, err = flags.GetInt("scan-range-days") })
	set("timeout-minutes", func() { cfg.Reaper.TimeoutMinutes, err = flags.GetFloat64("timeout-minutes") })
	set("state", func() { cfg.Reaper.StoppableStates, err = flags.GetStringSlice("state") })
	set("concurrency", func() { cfg.Reaper.Concurrency, err = flags.GetInt("concurrency") })
	set("request-timeout", func() { cfg.GitHub.RequestTimeout.Duration, err = flags.GetDuration("request-timeout") })
	set("dry-run", func() { cfg.Reaper.DryRun, err = flags.GetBool("dry-run") })
	set("force", func() { cfg.Reaper.Force, err = flags.GetBool("force") })
	set("output", func() { cfg.Output.Format = str("output") })
	set("no-color", func() { cfg.Output.NoColor, err = flags.GetBool("no-color") })
	set("log-level", func() { cfg.Log.Level = str("log-level") })
	set("log-format", func() { cfg.Log.Format = str("log-format") })
	set("log-file", func() { cfg.Log.File = config.ExpandPath(str("log-file")) })
	set("metrics-file", func() { cfg.Metrics.File = config.ExpandPath(str("metrics-file")) })
	set("pushgateway-url", func() { cfg.Metrics.PushgatewayURL = str("pushgateway-url") })
	return err
}
