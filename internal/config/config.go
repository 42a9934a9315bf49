// Package config provides configuration management for the sharpe-scout
// pipeline.
package config

import (
	"time"

	"github.com/yourusername/sharpe-scout/internal/models"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig           `mapstructure:"app" validate:"required"`
	Instruments []models.Instrument `mapstructure:"instruments" validate:"required,min=1,dive"`
	Provider    ProviderConfig      `mapstructure:"provider" validate:"required"`
	Training    TrainingConfig      `mapstructure:"training" validate:"required"`
	Split       SplitConfig         `mapstructure:"split" validate:"required"`
	Ranking     RankingConfig       `mapstructure:"ranking"`
	Database    DatabaseConfig      `mapstructure:"database"`
	Metrics     MetricsConfig       `mapstructure:"metrics"`
	Scheduler   SchedulerConfig     `mapstructure:"scheduler"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ProviderConfig represents market data provider configuration
type ProviderConfig struct {
	BaseURL         string  `mapstructure:"base_url" validate:"required,url"`
	APIKey          string  `mapstructure:"api_key" validate:"required"`
	CryptoMarket    string  `mapstructure:"crypto_market"`
	RateLimit       float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// TrainingConfig represents the training hyperparameters
type TrainingConfig struct {
	Epochs       int     `mapstructure:"epochs" validate:"gte=0"`
	BatchSize    int     `mapstructure:"batch_size" validate:"required,gt=0"`
	LearningRate float64 `mapstructure:"learning_rate" validate:"required,gt=0"`
	HiddenSize   int     `mapstructure:"hidden_size" validate:"required,gt=0"`
	Dropout      float64 `mapstructure:"dropout" validate:"gte=0,lt=1"`
	Seed         int64   `mapstructure:"seed"`
}

// SplitConfig represents the train/test date window boundaries
type SplitConfig struct {
	TrainStart string `mapstructure:"train_start" validate:"required,datetime=2006-01-02"`
	TrainEnd   string `mapstructure:"train_end" validate:"required,datetime=2006-01-02"`
	TestStart  string `mapstructure:"test_start" validate:"required,datetime=2006-01-02"`
	TestEnd    string `mapstructure:"test_end" validate:"required,datetime=2006-01-02"`
}

// RankingConfig represents Sharpe ranking behavior
type RankingConfig struct {
	RiskFreeRate      float64 `mapstructure:"risk_free_rate" validate:"gte=0,lte=1"`
	ApplyRiskFreeRate bool    `mapstructure:"apply_risk_free_rate"`
	UndefinedPolicy   string  `mapstructure:"undefined_policy" validate:"omitempty,oneof=last first exclude"`
}

// DatabaseConfig represents optional results persistence
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// SchedulerConfig represents periodic retraining configuration
type SchedulerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

// Windows returns the parsed split boundaries. Validate must have
// accepted the config first; parse errors are returned regardless.
func (s *SplitConfig) Windows() (trainStart, trainEnd, testStart, testEnd time.Time, err error) {
	if trainStart, err = time.Parse("2006-01-02", s.TrainStart); err != nil {
		return
	}
	if trainEnd, err = time.Parse("2006-01-02", s.TrainEnd); err != nil {
		return
	}
	if testStart, err = time.Parse("2006-01-02", s.TestStart); err != nil {
		return
	}
	testEnd, err = time.Parse("2006-01-02", s.TestEnd)
	return
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
