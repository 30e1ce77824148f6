package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pefman/w40k-sim/internal/config"
	"github.com/pefman/w40k-sim/internal/game"
	"github.com/pefman/w40k-sim/internal/logging"
	"github.com/pefman/w40k-sim/internal/models"
	"github.com/pefman/w40k-sim/internal/runlog"
)

// Build metadata injected via -ldflags at build time
var (
	buildVersion = "dev"
	buildTime    = ""
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	roster := models.DemoRoster()
	if cfg.RosterPath != "" {
		if roster, err = models.LoadRoster(cfg.RosterPath); err != nil {
			return err
		}
	}
	runs, err := runlog.New(cfg.RunLogDir)
	if err != nil {
		return err
	}

	s := &server{
		cfg:    cfg,
		log:    logger,
		roster: roster,
		runs:   runs,
		rules:  game.DefaultRuleset(),
	}
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("w40k simulation API listening",
		zap.String("addr", cfg.Addr()),
		zap.String("version", buildVersion),
		zap.String("build_time", buildTime),
		zap.Int("units", len(roster.Units)),
		zap.Int("workers", cfg.Workers),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
