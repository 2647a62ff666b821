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
	"golang.org/x/sync/errgroup"

	"namegen/internal/api"
	"namegen/internal/config"
	"namegen/internal/engine"
	"namegen/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "namegen: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Configuration and logging
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(cfg.LogLevel, cfg.LogFile, !cfg.IsProduction())
	if err != nil {
		return err
	}
	defer closeLog()

	// 2. Load the name table before accepting any traffic
	enc, err := engine.EncodingByName(cfg.DataEncoding)
	if err != nil {
		return err
	}
	t0 := time.Now()
	table, err := engine.Load(cfg.DataPath, engine.WithEncoding(enc))
	if err != nil {
		logger.Error("Failed to load name table", zap.String("path", cfg.DataPath), zap.Error(err))
		return err
	}
	logger.Info("Name table loaded",
		zap.String("path", cfg.DataPath),
		zap.Int("rows", table.Len()),
		zap.Int("countries", len(table.Countries())),
		zap.String("checksum", fmt.Sprintf("%016x", table.Checksum())),
		zap.Duration("took", time.Since(t0)),
	)

	// 3. Serve until SIGINT/SIGTERM
	e := api.NewServer(cfg, table, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server listening", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
