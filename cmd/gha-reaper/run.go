package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/altinukshini/gha-reaper/internal/config"
	"github.com/altinukshini/gha-reaper/internal/identity"
	"github.com/altinukshini/gha-reaper/internal/metrics"
	"github.com/altinukshini/gha-reaper/internal/model"
	"github.com/altinukshini/gha-reaper/internal/reaper"
	"github.com/altinukshini/gha-reaper/internal/report"
	"github.com/altinukshini/gha-reaper/internal/tui"
)

func run(ctx context.Context, cfg *config.Config, interactive bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Output.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	invocation := uuid.NewString()
	logger, closeLog, err := newLogger(cfg.Log, interactive)
	if err != nil {
		return err
	}
	defer closeLog()
	logger = logger.With("invocation", invocation)
	slog.SetDefault(logger)

	logger.Info("starting",
		"version", version,
		"scan_range_days", cfg.Reaper.ScanRangeDays,
		"timeout_minutes", cfg.Reaper.TimeoutMinutes,
		"app", cfg.UsesApp(),
	)

	creds := identity.Credentials{
		AppID:  cfg.GitHub.AppID,
		Token:  cfg.GitHub.Token,
		UseGH:  true,
		Repos:  cfg.GitHub.Repos,
		Host:   cfg.GitHub.Host,
		Logger: logger,
	}
	if cfg.UsesApp() {
		if creds.PrivateKey, err = cfg.PrivateKeyPEM(); err != nil {
			return err
		}
	}
	enum, err := identity.NewEnumerator(creds)
	if err != nil {
		return err
	}

	recorder := metrics.New(version)
	rows := report.New()
	started := time.Now()

	var reapErr error
	if interactive {
		var confirmed bool
		confirmed, reapErr = runInteractive(ctx, cfg, logger, enum, recorder, rows)
		if !confirmed {
			if reapErr != nil {
				return reapErr
			}
			logger.Info("aborted before any cancellation")
			return nil
		}
	} else {
		var r *reaper.Reaper
		if r, err = newReaper(cfg, logger, recorder); err != nil {
			return err
		}
		reapErr = r.Reap(ctx, enum, rows)
	}
	recorder.Finish(started, time.Now(), reapErr)

	meta := report.Meta{InvocationID: invocation, GeneratedAt: time.Now(), DryRun: cfg.Reaper.DryRun}
	outErr := emit(ctx, cfg, meta, rows.Rows(), recorder, logger)

	if reapErr != nil {
		return fmt.Errorf("reap aborted: %w", reapErr)
	}
	return outErr
}

func newReaper(cfg *config.Config, logger *slog.Logger, observer reaper.Observer) (*reaper.Reaper, error) {
	return reaper.New(reaper.Options{
		ScanRangeDays: cfg.Reaper.ScanRangeDays,
		Policy: reaper.Policy{
			StoppableStates: reaper.NewStatusSet(cfg.Reaper.StoppableStates...),
			Timeout:         reaper.TimeoutFromMinutes(cfg.Reaper.TimeoutMinutes),
		},
		RequestTimeout: cfg.GitHub.RequestTimeout.Duration,
		Concurrency:    cfg.Reaper.Concurrency,
		Force:          cfg.Reaper.Force,
		DryRun:         cfg.Reaper.DryRun,
		Logger:         logger,
		Observer:       observer,
	})
}

func runInteractive(ctx context.Context, cfg *config.Config, logger *slog.Logger, enum reaper.Enumerator, recorder *metrics.Recorder, sink reaper.Sink) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scope := "token"
	if cfg.UsesApp() {
		scope = fmt.Sprintf("app %d", cfg.GitHub.AppID)
	}
	details := []string{
		fmt.Sprintf("States:    %s", strings.Join(cfg.Reaper.StoppableStates, ", ")),
		fmt.Sprintf("Older than: %v minutes", cfg.Reaper.TimeoutMinutes),
		fmt.Sprintf("Created in: last %d days", cfg.Reaper.ScanRangeDays),
	}
	if cfg.Reaper.DryRun {
		details = append(details, "Dry run: nothing will be cancelled")
	}
	if cfg.Reaper.Force {
		details = append(details, "Force-cancel is enabled")
	}

	var p *tea.Program
	app := tui.NewApp(tui.Options{
		Scope:   scope,
		Details: details,
		Abort:   cancel,
		Run: func() error {
			r, err := newReaper(cfg, logger, reaper.Observers(recorder, tui.NewBridge(p.Send)))
			if err != nil {
				return err
			}
			return r.Reap(ctx, enum, sink)
		},
	})
	p = tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		err = nil
	}
	done, ok := final.(tui.App)
	if !ok || !done.Confirmed() {
		if err != nil {
			return false, fmt.Errorf("error running program: %w", err)
		}
		return false, nil
	}
	// Quitting mid-reap only cancels ctx; rows still in flight land in
	// sink before Wait returns.
	cancel()
	if reapErr := done.Wait(); reapErr != nil {
		return true, reapErr
	}
	if err != nil {
		return true, fmt.Errorf("error running program: %w", err)
	}
	return true, nil
}

// emit writes the report and metrics everywhere configured. Every
// destination is attempted; the first failure is returned.
func emit(ctx context.Context, cfg *config.Config, meta report.Meta, rows []model.AuditRow, recorder *metrics.Recorder, logger *slog.Logger) error {
	var errs []error

	if err := report.Render(os.Stdout, resolveFormat(cfg.Output.Format, os.Stdout), meta, rows); err != nil {
		errs = append(errs, err)
	}

	markdown := report.Markdown(rows)
	if path := cfg.Output.GitHubOutput; path != "" {
		if err := report.SetOutput(path, "report", markdown); err != nil {
			errs = append(errs, err)
		}
	}
	if path := cfg.Output.StepSummary; path != "" {
		if err := report.AppendStepSummary(path, "Workflow reaper", markdown); err != nil {
			errs = append(errs, err)
		}
	}

	if path := cfg.Metrics.File; path != "" {
		if err := recorder.WriteTextfile(path); err != nil {
			errs = append(errs, err)
		}
	}
	if url := cfg.Metrics.PushgatewayURL; url != "" {
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.GitHub.RequestTimeout.Duration)
		defer cancel()
		if err := recorder.Push(pushCtx, url, cfg.Metrics.Job, map[string]string{"invocation": meta.InvocationID}); err != nil {
			errs = append(errs, err)
		}
	}

	for _, err := range errs {
		logger.Error("output failed", "error", err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func resolveFormat(format string, out *os.File) string {
	if format != "auto" {
		return format
	}
	if term.IsTerminal(int(out.Fd())) {
		return "table"
	}
	return "markdown"
}

// newLogger builds the process logger. In interactive mode logs would
// corrupt the screen, so they are dropped unless a log file is set.
func newLogger(cfg config.LogConfig, interactive bool) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case cfg.File != "":
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	case interactive:
		w = io.Discard
	}

	options := &slog.HandlerOptions{Level: level}
	format := cfg.Format
	if format == "auto" {
		format = "json"
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = "text"
		}
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, options)), closeFn, nil
	}
	return slog.New(slog.NewTextHandler(w, options)), closeFn, nil
}
