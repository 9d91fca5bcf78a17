package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/its-jojoo/otterboard/internal/adapter/capture"
	"github.com/its-jojoo/otterboard/internal/adapter/clipboard"
	"github.com/its-jojoo/otterboard/internal/adapter/storage"
	"github.com/its-jojoo/otterboard/internal/bootstrap"
	"github.com/its-jojoo/otterboard/internal/config"
	"github.com/its-jojoo/otterboard/internal/logging"
	"github.com/its-jojoo/otterboard/internal/usecase/ingest"
	"github.com/its-jojoo/otterboard/internal/usecase/library"
	"github.com/its-jojoo/otterboard/internal/usecase/search"
)

// app wires the library to its adapters for one process.
type app struct {
	cfg     config.Config
	log     *slog.Logger
	store   *storage.Adapter
	lib     *library.Manager
	host    *clipboard.SystemHost
	clip    *clipboard.Adapter
	capture *capture.Adapter
	ingest  *ingest.Service
	search  *search.Service
}

func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	level := cfg.Logging.Level
	if flags.LogLevel != "" {
		level = flags.LogLevel
	}
	return cfg, logging.New(level, os.Stderr), nil
}

func openApp(ctx context.Context) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	backend, err := bootstrap.OpenBackend(cfg, flags.Ephemeral)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	pf, err := bootstrap.PrivacyFilter(cfg)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("invalid ignore patterns: %w", err)
	}

	store := storage.NewAdapter(backend, log)
	lib := library.New(store, library.WithLogger(log))
	lib.Load(ctx)

	host := clipboard.NewSystemHost()
	clip := clipboard.NewAdapter(host, store, log)
	clip.RestorePermission(ctx)

	return &app{
		cfg:     cfg,
		log:     log,
		store:   store,
		lib:     lib,
		host:    host,
		clip:    clip,
		capture: capture.NewAdapter(capture.DetectHost(cfg.Capture.Tool), log),
		ingest: ingest.New(lib, pf, ingest.Config{
			MaxItems:          cfg.Library.MaxItems,
			DedupeConsecutive: cfg.Library.DedupeConsecutive,
		}, log),
		search: search.New(lib),
	}, nil
}

func (a *app) Close(ctx context.Context) {
	a.lib.Close(ctx)
	if err := a.store.Close(); err != nil {
		a.log.Warn("close storage", "error", err)
	}
}

// sources returns the passive clipboard sources enabled by config.
func (a *app) sources() ([]clipboard.EventSource, error) {
	interval, err := a.cfg.PollInterval()
	if err != nil {
		return nil, err
	}
	out := []clipboard.EventSource{clipboard.NewPollSource(a.host, interval)}

	dir, err := a.cfg.DropDir()
	if err != nil {
		return nil, err
	}
	if dir != "" {
		out = append(out, clipboard.NewDropDir(dir))
	}
	return out, nil
}
