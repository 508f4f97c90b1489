package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/elcamino/weather-report/internal/api/http"
	"github.com/elcamino/weather-report/internal/config"
	"github.com/elcamino/weather-report/internal/scheduler"
	"github.com/elcamino/weather-report/internal/store"
	"github.com/elcamino/weather-report/internal/weather"
	"github.com/elcamino/weather-report/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "weather-report",
		Short:         "Current weather and daily forecast from Open-Meteo",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (defaults to $CONFIG_PATH or ./config.yaml)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with periodic refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}

	var output string
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch and print the current report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return get(cmd.Context(), configPath, output)
		},
	}
	getCmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json)")

	clearCacheCmd := &cobra.Command{
		Use:   "clear-cache",
		Short: "Empty the response cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return clearCache(cmd.Context(), configPath)
		},
	}

	rootCmd.AddCommand(serveCmd, getCmd, clearCacheCmd)
	return rootCmd
}

func setup(configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(cfg.Log.Level)
	slog.SetDefault(log)
	return cfg, log, nil
}

func serve(configPath string) error {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}

	responseCache := provideCache(cfg, log)
	defer responseCache.Close()

	memStore := store.NewMemoryStore(cfg.Store.MaxHistory, cfg.Store.MaxAge)
	service := weather.NewService(cfg.Weather.Domain(), provideFetcher(cfg, responseCache, log), memStore, log)

	sched := scheduler.New(cfg.Scheduler.Interval, service, log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(log, os.Stdout, cfg.HTTP.Timeout)
	httpapi.RegisterRoutes(app, service)

	go func() {
		log.Info("http server listening", "address", cfg.HTTP.Address)
		if err := app.Listen(cfg.HTTP.Address); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
	return nil
}

func get(ctx context.Context, configPath, output string) error {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}

	responseCache := provideCache(cfg, log)
	defer responseCache.Close()

	domain := cfg.Weather.Domain()
	service := weather.NewService(domain, provideFetcher(cfg, responseCache, log), nil, log)

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	report, err := service.GetWeather(ctx, domain)
	if err != nil {
		return err
	}
	return writeReport(os.Stdout, report, output)
}

func clearCache(ctx context.Context, configPath string) error {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}

	responseCache := provideCache(cfg, log)
	defer responseCache.Close()

	if err := responseCache.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	log.Info("response cache cleared", "backend", cfg.Cache.Backend)
	return nil
}
