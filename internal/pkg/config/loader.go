// Package config provides fail-open environment loaders and reusable
// validators shared by the newsdesk components.
//
// Every loader returns a LoadResult: an unset variable yields the default
// silently, an unparsable or invalid one yields the default plus a warning.
// Loaders never return errors.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadResult is the outcome of loading one configuration value.
type LoadResult[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

// Report logs the warnings of a fallback and records it in metrics under
// field. It returns FallbackApplied so callers can track whether any
// fallback is active. metrics may be nil.
func (r LoadResult[T]) Report(logger *slog.Logger, metrics *Metrics, field string) bool {
	if !r.FallbackApplied {
		return false
	}
	if metrics != nil {
		metrics.Fallback(field)
	}
	for _, warning := range r.Warnings {
		logger.Warn("Configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}
	return true
}

func ok[T any](v T) LoadResult[T] {
	return LoadResult[T]{Value: v}
}

func fallback[T any](def T, envKey, raw string, reason any) LoadResult[T] {
	return LoadResult[T]{
		Value: def,
		Warnings: []string{fmt.Sprintf(
			"Invalid %s='%s': %v, falling back to default '%v'", envKey, raw, reason, def)},
		FallbackApplied: true,
	}
}

// LoadEnvString returns the variable's value or defaultValue when unset.
// No validation is performed.
func LoadEnvString(envKey, defaultValue string) string {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadEnvWithFallback loads a string and validates it. validator may be nil.
//
// Example:
//
//	result := LoadEnvWithFallback("CRON_SCHEDULE", "*/30 * * * *", ValidateCronSchedule)
//	schedule := result.Value
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) LoadResult[string] {
	value := os.Getenv(envKey)
	if value == "" {
		return ok(defaultValue)
	}
	if validator != nil {
		if err := validator(value); err != nil {
			return fallback(defaultValue, envKey, value, err)
		}
	}
	return ok(value)
}

// LoadEnvDuration loads a Go duration string ("30s", "1h30m") and validates
// it. validator may be nil.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) LoadResult[time.Duration] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return ok(defaultValue)
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback(defaultValue, envKey, raw, err)
	}
	if validator != nil {
		if err := validator(d); err != nil {
			return fallback(defaultValue, envKey, raw, err)
		}
	}
	return ok(d)
}

// LoadEnvInt loads a base-10 integer and validates it. validator may be nil.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) LoadResult[int] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return ok(defaultValue)
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback(defaultValue, envKey, raw, "invalid integer format")
	}
	if validator != nil {
		if err := validator(n); err != nil {
			return fallback(defaultValue, envKey, raw, err)
		}
	}
	return ok(n)
}

// LoadEnvBool loads a boolean in any form accepted by strconv.ParseBool.
func LoadEnvBool(envKey string, defaultValue bool) LoadResult[bool] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return ok(defaultValue)
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback(defaultValue, envKey, raw, "invalid boolean format, expected 'true' or 'false'")
	}
	return ok(b)
}

// LoadEnvFloat loads a float and validates it. validator may be nil.
func LoadEnvFloat(envKey string, defaultValue float64, validator func(float64) error) LoadResult[float64] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return ok(defaultValue)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fallback(defaultValue, envKey, raw, "invalid number format")
	}
	if validator != nil {
		if err := validator(f); err != nil {
			return fallback(defaultValue, envKey, raw, err)
		}
	}
	return ok(f)
}

// LoadEnvList loads a comma-separated list, trimming items and dropping
// empty ones. A variable with no items yields defaultValue.
func LoadEnvList(envKey string, defaultValue []string) []string {
	raw := os.Getenv(envKey)
	if raw == "" {
		return defaultValue
	}
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			items = append(items, s)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
