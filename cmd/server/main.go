package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/gridiron-edge/internal/cache"
	"github.com/yourusername/gridiron-edge/internal/config"
	"github.com/yourusername/gridiron-edge/internal/logger"
	"github.com/yourusername/gridiron-edge/internal/metrics"
	"github.com/yourusername/gridiron-edge/internal/oddsapi"
	"github.com/yourusername/gridiron-edge/internal/pipeline"
	"github.com/yourusername/gridiron-edge/internal/scheduler"
	"github.com/yourusername/gridiron-edge/internal/server"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	cfg        *config.Config
	appLogger  *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:     "gridiron-edge",
	Short:   "Graded football betting odds API",
	Long:    `Fetches football odds, consolidates quotes across bookmakers, grades each selection, and serves the results over a cached JSON API.`,
	Version: fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
		appLogger = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	appLogger.WithFields(logrus.Fields{
		"version":     Version,
		"environment": cfg.App.Environment,
	}).Info("Starting gridiron-edge")

	metrics.InitRegistry()

	usage := oddsapi.NewUsageTracker()
	client := oddsapi.NewClient(oddsapi.ClientConfig{
		BaseURL:          cfg.OddsAPI.BaseURL,
		APIKey:           cfg.OddsAPI.APIKey,
		Regions:          cfg.OddsAPI.Regions,
		Timeout:          cfg.OddsAPITimeout(),
		MaxRetries:       cfg.OddsAPI.MaxRetries,
		RetryWaitMin:     100 * time.Millisecond,
		RetryWaitMax:     5 * time.Second,
		RateLimit:        cfg.OddsAPI.RateLimit,
		FetchConcurrency: cfg.OddsAPI.FetchConcurrency,
	}, usage, appLogger)

	pipe := pipeline.New(client, pipeline.Config{
		TeamSport:         cfg.Pipeline.TeamSport,
		PropSport:         cfg.Pipeline.PropSport,
		TeamMarkets:       cfg.Pipeline.TeamMarkets,
		PropMarkets:       cfg.Pipeline.PropMarkets,
		MaxPropEvents:     cfg.Pipeline.MaxPropEvents,
		HideStartedBuffer: cfg.HideStartedBuffer(),
	}, appLogger)

	store := cache.NewStore(cache.StoreConfig{
		TTL:               cfg.CacheTTL(),
		HideStartedBuffer: cfg.HideStartedBuffer(),
		SnapshotPath:      cfg.Cache.SnapshotFile,
		Keys:              []cache.ResourceKey{cache.ResourceCFBBets, cache.ResourceNFLProps},
	}, appLogger)
	store.WarmStart()

	srv := server.New(cfg, store, pipe, usage, appLogger)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(store, map[cache.ResourceKey]cache.RefreshFunc{
			cache.ResourceCFBBets:  pipe.RefreshTeamBets,
			cache.ResourceNFLProps: pipe.RefreshPropBets,
		}, appLogger)
		if err := sched.ScheduleRewarm(cfg.Scheduler.RefreshSchedule); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		appLogger.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	if sched != nil {
		if err := sched.Stop(); err != nil {
			appLogger.WithError(err).Warn("Scheduler stop failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	appLogger.Info("Shutdown complete")
	return nil
}
