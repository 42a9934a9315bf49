// Package main provides the entry point for the periodic retraining daemon.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/sharpe-scout/internal/config"
	"github.com/yourusername/sharpe-scout/internal/database"
	"github.com/yourusername/sharpe-scout/internal/datasource"
	"github.com/yourusername/sharpe-scout/internal/health"
	"github.com/yourusername/sharpe-scout/internal/logger"
	"github.com/yourusername/sharpe-scout/internal/metrics"
	"github.com/yourusername/sharpe-scout/internal/pipeline"
	"github.com/yourusername/sharpe-scout/internal/repository"
	"github.com/yourusername/sharpe-scout/internal/scheduler"
)

var (
	configFile string
	runOnce    bool
	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().BoolVar(&runOnce, "run-once", false, "Run the pipeline immediately before starting the schedule")
}

var rootCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the ranking pipeline on a cron schedule",
	Long:  `Long-running daemon that retrains every configured instrument on a cron schedule and exposes health and metrics endpoints.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return setupDependencies()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}
	return config.Validate(cfg)
}

func setupDependencies() error {
	appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	metrics.InitRegistry()

	if cfg.Database.Enabled {
		var err error
		db, err = database.New(context.Background(), &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.InitSchema(context.Background()); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		repos, err = repository.NewRepositories(db)
		if err != nil {
			return fmt.Errorf("failed to initialize repositories: %w", err)
		}
	}
	return nil
}

func runDaemon() error {
	clientCfg := datasource.DefaultHTTPClientConfig()
	clientCfg.RateLimit = cfg.Provider.RateLimit
	clientCfg.Timeout = time.Duration(cfg.Provider.TimeoutSeconds) * time.Second
	client := datasource.NewRateLimitedHTTPClient(clientCfg, appLog)
	defer client.Close()

	cacheTTL := time.Duration(cfg.Provider.CacheTTLSeconds) * time.Second
	factory := datasource.NewFactory(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Provider.CryptoMarket, client, cacheTTL)

	p, err := pipeline.New(cfg, factory, repos, appLog)
	if err != nil {
		return err
	}

	var healthDB health.DatabasePinger
	if db != nil {
		healthDB = db
	}
	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Port:        cfg.Metrics.Port,
		MetricsPath: cfg.Metrics.Path,
		Logger:      appLog,
		DB:          healthDB,
	})
	if cfg.Metrics.Enabled {
		healthServer.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = healthServer.Stop(ctx)
		}()
	}

	if runOnce {
		if _, err := p.Run(context.Background()); err != nil {
			return fmt.Errorf("initial pipeline run failed: %w", err)
		}
	}

	sched := scheduler.NewScheduler(p, appLog)
	if err := sched.SchedulePipeline(cfg.Scheduler.Cron); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	healthServer.SetReady(true)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig.String()).Info("Shutting down")

	healthServer.SetReady(false)
	if err := sched.Stop(); err != nil {
		return err
	}
	if db != nil {
		db.Close()
	}
	return nil
}
