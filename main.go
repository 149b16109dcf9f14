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

	"millflow/internal/config"
	"millflow/internal/server"
	"millflow/internal/store"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "millflow: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("millflow", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "path to a YAML config file")
	port := flagSet.IntP("port", "p", 0, "HTTP port (overrides config)")
	dbPath := flagSet.String("db", "", "SQLite database path (overrides config)")
	dev := flagSet.Bool("dev", false, "human-readable debug logging")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if flagSet.Changed("port") {
		cfg.Server.Port = *port
	}
	if flagSet.Changed("db") {
		cfg.Server.DBPath = *dbPath
	}
	if flagSet.Changed("dev") {
		cfg.Server.Dev = *dev
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg.Server.Dev)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	st, err := store.Open(cfg.Server.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	app := server.NewApp(cfg, st, log)
	if n, err := app.Service.SyncPending(context.Background()); err != nil {
		log.Warn("initial work order sync failed", zap.Error(err))
	} else if n > 0 {
		log.Info("generated work orders at startup", zap.Int("count", n))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("millflow starting",
			zap.String("addr", "http://localhost"+srv.Addr),
			zap.String("db", cfg.Server.DBPath),
			zap.String("company", cfg.Company.Name))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	return nil
}

func newLogger(dev bool) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if dev {
		zapCfg = zap.NewDevelopmentConfig()
	}
	return zapCfg.Build()
}
