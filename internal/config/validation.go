// Package config provides configuration management for the Gridiron Edge service.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	v.RegisterValidation("environment", validateEnvironment)
	v.RegisterValidation("loglevel", validateLogLevel)

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

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	switch env {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	level := fl.Field().String()
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateCrossField performs validations the struct tags cannot express
func validateCrossField(cfg *Config) error {
	if cfg.Scheduler.Enabled {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(cfg.Scheduler.RefreshSchedule); err != nil {
			return fmt.Errorf("invalid scheduler refresh_schedule %q: %w", cfg.Scheduler.RefreshSchedule, err)
		}
	}

	if cfg.Pipeline.MaxPropEvents > 50 {
		return fmt.Errorf("pipeline max_prop_events %d would exhaust the upstream quota, limit is 50", cfg.Pipeline.MaxPropEvents)
	}

	return nil
}

// formatValidationErrors renders validator errors as a readable message
func formatValidationErrors(errs validator.ValidationErrors) error {
	messages := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		messages = append(messages, fmt.Sprintf(
			"field %s failed validation rule %s",
			fieldErr.Namespace(),
			fieldErr.Tag(),
		))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}
