// Package main provides the entry point for training a single instrument.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/sharpe-scout/internal/config"
	"github.com/yourusername/sharpe-scout/internal/datasource"
	"github.com/yourusername/sharpe-scout/internal/logger"
	"github.com/yourusername/sharpe-scout/internal/metrics"
	"github.com/yourusername/sharpe-scout/internal/models"
	"github.com/yourusername/sharpe-scout/internal/pipeline"
)

var (
	configFile string
	symbol     string
	crypto     bool
	appLog     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&symbol, "symbol", "s", "", "Instrument symbol to train (e.g. EURUSD or BTC)")
	rootCmd.Flags().BoolVar(&crypto, "crypto", false, "Treat the symbol as a digital currency")
	_ = rootCmd.MarkFlagRequired("symbol")
}

var rootCmd = &cobra.Command{
	Use:   "train",
	Short: "Train and evaluate the regression model for one instrument",
	Long:  `Fetches the instrument's history, trains the regression network over the configured windows, and prints the resulting run record as JSON.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		metrics.InitRegistry()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTraining()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runTraining() error {
	clientCfg := datasource.DefaultHTTPClientConfig()
	clientCfg.RateLimit = cfg.Provider.RateLimit
	clientCfg.Timeout = time.Duration(cfg.Provider.TimeoutSeconds) * time.Second
	client := datasource.NewRateLimitedHTTPClient(clientCfg, appLog)
	defer client.Close()

	cacheTTL := time.Duration(cfg.Provider.CacheTTLSeconds) * time.Second
	factory := datasource.NewFactory(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Provider.CryptoMarket, client, cacheTTL)

	p, err := pipeline.New(cfg, factory, nil, appLog)
	if err != nil {
		return err
	}

	inst := models.Instrument{Symbol: symbol, Crypto: crypto}
	run, sharpe, err := p.RunInstrument(context.Background(), inst, cfg.Training.Seed)
	if err != nil {
		return fmt.Errorf("training %s failed: %w", symbol, err)
	}

	out := struct {
		Run    *models.TrainingRun `json:"run"`
		Sharpe float64             `json:"sharpe_ratio"`
	}{Run: run, Sharpe: sharpe}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
