// Package main provides the entry point for the one-shot ranking CLI.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sharpe-scout/internal/config"
	"github.com/yourusername/sharpe-scout/internal/database"
	"github.com/yourusername/sharpe-scout/internal/datasource"
	"github.com/yourusername/sharpe-scout/internal/logger"
	"github.com/yourusername/sharpe-scout/internal/metrics"
	"github.com/yourusername/sharpe-scout/internal/pipeline"
	"github.com/yourusername/sharpe-scout/internal/repository"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		output     = flag.String("output", "", "Optional path to write the ranking table as JSON")
		noPersist  = flag.Bool("no-persist", false, "Skip database persistence even when configured")
	)
	flag.Parse()

	bootstrapLog := logrus.New()
	cfg := loadConfigWithSecrets(*configPath, bootstrapLog)
	log := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	metrics.InitRegistry()

	ctx := context.Background()

	factory := buildProviderFactory(cfg, log)
	repos := buildRepositories(ctx, cfg, *noPersist, log)

	p, err := pipeline.New(cfg, factory, repos, log)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	report, err := p.Run(ctx)
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	if *output != "" {
		writeRanking(*output, report, log)
	}
	if len(report.Failures) > 0 {
		os.Exit(1)
	}
}

func loadConfigWithSecrets(path string, log *logrus.Logger) *config.Config {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func buildProviderFactory(cfg *config.Config, log *logrus.Logger) *datasource.Factory {
	clientCfg := datasource.DefaultHTTPClientConfig()
	clientCfg.RateLimit = cfg.Provider.RateLimit
	clientCfg.Timeout = time.Duration(cfg.Provider.TimeoutSeconds) * time.Second
	client := datasource.NewRateLimitedHTTPClient(clientCfg, log)

	cacheTTL := time.Duration(cfg.Provider.CacheTTLSeconds) * time.Second
	return datasource.NewFactory(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Provider.CryptoMarket, client, cacheTTL)
}

func buildRepositories(ctx context.Context, cfg *config.Config, noPersist bool, log *logrus.Logger) *repository.Repositories {
	if noPersist || !cfg.Database.Enabled {
		return nil
	}
	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	repos, err := repository.NewRepositories(db)
	if err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}
	return repos
}

func writeRanking(path string, report *pipeline.Report, log *logrus.Logger) {
	data, err := json.MarshalIndent(report.Ranking, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal ranking: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatalf("Failed to write ranking to %s: %v", path, err)
	}
	log.WithField("path", path).Info("Wrote ranking table")
}
