// internal/pkg/config/validators.go
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrMissingRequiredConfig reports a required configuration value that
// was never set.
var ErrMissingRequiredConfig = errors.New("missing required configuration")

// ConfigValidator validates a loaded configuration
type ConfigValidator interface {
	Validate(cfg *Config) error
}

// ValidateAll runs every validator applicable to the environment.
func ValidateAll(cfg *Config) error {
	validators := []ConfigValidator{&BasicValidator{}}
	if cfg.IsProduction() {
		validators = append(validators, &ProductionValidator{})
	}

	for _, v := range validators {
		if err := v.Validate(cfg); err != nil {
			return err
		}
	}
	return nil
}

// BasicValidator performs basic configuration validation
type BasicValidator struct{}

// Validate performs basic validation
func (v *BasicValidator) Validate(cfg *Config) error {
	if err := validateRequiredFields(cfg); err != nil {
		return err
	}

	if cfg.Database.MaxConnections < cfg.Database.MinConnections {
		return fmt.Errorf("database max_connections must be >= min_connections")
	}

	if cfg.Redis.PoolSize <= 0 {
		return fmt.Errorf("redis pool_size must be positive")
	}

	if cfg.Security.RateLimitRequests <= 0 {
		return fmt.Errorf("rate_limit_requests must be positive")
	}

	if cfg.ListStore.Timeout <= 0 {
		return fmt.Errorf("list store timeout must be positive")
	}

	return nil
}

// ProductionValidator performs strict validation for production environments
type ProductionValidator struct{}

// Validate performs production-specific validation
func (v *ProductionValidator) Validate(cfg *Config) error {
	if strings.Contains(cfg.Database.Password, "MISSING_") {
		return fmt.Errorf("%w: database password", ErrMissingRequiredConfig)
	}

	if cfg.Database.Password == "feira_dev_2026" {
		return fmt.Errorf("default database password cannot be used in production")
	}

	if cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("database SSL must be enabled in production")
	}

	if !cfg.Security.SecureHeaders {
		return fmt.Errorf("secure headers must be enabled in production")
	}

	if len(cfg.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed origins must be configured in production")
	}

	for _, origin := range cfg.Security.AllowedOrigins {
		if origin == "*" {
			return fmt.Errorf("wildcard origin (*) not allowed in production")
		}
	}

	if cfg.ListStore.APIKey == "" {
		return fmt.Errorf("%w: list store API key", ErrMissingRequiredConfig)
	}

	return nil
}

// validateRequiredFields uses reflection to check required struct tags
func validateRequiredFields(cfg interface{}) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	return validateStruct(v, "")
}

func validateStruct(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		fieldName := fieldType.Name

		if prefix != "" {
			fieldName = prefix + "." + fieldName
		}

		if required := fieldType.Tag.Get("required"); required == "true" {
			if isZeroValue(field) {
				return fmt.Errorf("%w: %s", ErrMissingRequiredConfig, fieldName)
			}
		}

		if field.Kind() == reflect.Struct {
			if err := validateStruct(field, fieldName); err != nil {
				return err
			}
		}
	}

	return nil
}

func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == "" || strings.HasPrefix(v.String(), "MISSING_")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.IsNil() || v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
