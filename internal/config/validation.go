// Package config provides configuration management for the sharpe-scout
// pipeline.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Registration only fails for empty tags, which are constants here.
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	trainStart, trainEnd, testStart, testEnd, err := cfg.Split.Windows()
	if err != nil {
		return fmt.Errorf("invalid split window: %w", err)
	}
	if !trainStart.Before(trainEnd) {
		return fmt.Errorf("split.train_start must be before split.train_end")
	}
	if !testStart.Before(testEnd) {
		return fmt.Errorf("split.test_start must be before split.test_end")
	}
	if overlaps(trainStart, trainEnd, testStart, testEnd) {
		return fmt.Errorf("train window [%s, %s] overlaps test window [%s, %s]",
			cfg.Split.TrainStart, cfg.Split.TrainEnd, cfg.Split.TestStart, cfg.Split.TestEnd)
	}

	if cfg.Database.Enabled {
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("database.host, database.name and database.user are required when database.enabled is true")
		}
		if cfg.Database.Port == 0 {
			return fmt.Errorf("database.port is required when database.enabled is true")
		}
	}

	if cfg.Scheduler.Enabled && cfg.Scheduler.Cron == "" {
		return fmt.Errorf("scheduler.cron is required when scheduler.enabled is true")
	}
	return nil
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	msg := "configuration validation failed:"
	for _, e := range errs {
		msg += fmt.Sprintf("\n  - field %q failed on the %q rule", e.Namespace(), e.Tag())
	}
	return fmt.Errorf("%s", msg)
}
