package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"

	"github.com/Dicklesworthstone/procdash/internal/backend"
	"github.com/Dicklesworthstone/procdash/internal/config"
	"github.com/Dicklesworthstone/procdash/internal/live"
	"github.com/Dicklesworthstone/procdash/internal/sampler"
	"github.com/Dicklesworthstone/procdash/internal/theme"
	"github.com/Dicklesworthstone/procdash/internal/ui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "procdash:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.FromFlags(args)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := ui.Deps{Logger: log}
	if cfg.Local {
		deps.Backend = sampler.NewLocal(cfg.Thresholds.CPU, cfg.Thresholds.Memory, log)
		deps.Samples = sampler.New(cfg.RefreshInterval, log)
	} else {
		client, err := backend.NewClient(cfg.BaseURL, &http.Client{}, log)
		if err != nil {
			return err
		}
		wsURL, err := live.URLFor(cfg.BaseURL, cfg.WSPath)
		if err != nil {
			return err
		}
		deps.Backend = client
		deps.Samples = live.New(live.Config{URL: wsURL, Logger: log})
	}

	if cfg.JSON {
		return dumpProcesses(ctx, cfg, deps.Backend, os.Stdout)
	}

	deps.Theme = theme.Resolve(cfg.StateFile, ui.HasDarkBackground)
	if cfg.StateFile != "" {
		if err = os.MkdirAll(filepath.Dir(cfg.StateFile), 0o755); err != nil {
			log.Warn("create state dir", "err", err)
		}
		if themes, err := theme.Watch(ctx, cfg.StateFile, log); err != nil {
			log.Warn("theme preference will not be watched", "path", cfg.StateFile, "err", err)
		} else {
			deps.Themes = themes
		}
	}

	log.Info("procdash starting", "base_url", cfg.BaseURL, "local", cfg.Local, "config", cfg.ConfigFile)
	return ui.RunTUI(cfg, deps)
}

// dumpProcesses prints one process snapshot as indented JSON.
func dumpProcesses(ctx context.Context, cfg config.Config, b backend.Backend, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	recs, err := b.Processes(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

// newLogger writes tint-formatted logs to the configured file. The terminal
// belongs to the TUI, so nothing is logged to stderr.
func newLogger(cfg config.Config) (*slog.Logger, func(), error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	var w io.Writer = io.Discard
	closeFn := func() {}
	if cfg.LogFile != "" {
		if err = os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closeFn = f, func() { _ = f.Close() }
	}
	h := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    true,
	})
	return slog.New(h), closeFn, nil
}
