package config

import (
	"fmt"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// Validate validates the configuration and returns validation errors.
func (c *Config) Validate() []error {
	var errs []error

	// Validate server configuration
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", c.Server.Port),
		})
	}

	// Validate simulation configuration
	if c.Simulation.TickInterval <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "simulation.tick_interval",
			Message: "tick_interval must be positive",
		})
	}
	if c.Simulation.OrbitalPeriod <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "simulation.orbital_period",
			Message: "orbital_period must be positive",
		})
	}
	if c.Simulation.FaultDuration <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "simulation.fault_duration",
			Message: "fault_duration must be positive",
		})
	}
	if c.Simulation.HistoryCapacity < 1 {
		errs = append(errs, &ValidationError{
			Field:   "simulation.history_capacity",
			Message: fmt.Sprintf("history_capacity must be at least 1, got %d", c.Simulation.HistoryCapacity),
		})
	}
	if c.Simulation.PrefillPoints < 0 {
		errs = append(errs, &ValidationError{
			Field:   "simulation.prefill_points",
			Message: "prefill_points must not be negative",
		})
	}

	// Validate detection configuration
	if c.Detection.StatMinSamples < 2 {
		errs = append(errs, &ValidationError{
			Field:   "detection.stat_min_samples",
			Message: fmt.Sprintf("stat_min_samples must be at least 2, got %d", c.Detection.StatMinSamples),
		})
	}
	if c.Detection.StatWindow < c.Detection.StatMinSamples {
		errs = append(errs, &ValidationError{
			Field:   "detection.stat_window",
			Message: "stat_window must be at least stat_min_samples",
		})
	}
	if c.Detection.ForestTrees < 1 {
		errs = append(errs, &ValidationError{
			Field:   "detection.forest_trees",
			Message: "forest_trees must be at least 1",
		})
	}
	if c.Detection.ForestSubsample < 2 {
		errs = append(errs, &ValidationError{
			Field:   "detection.forest_subsample",
			Message: "forest_subsample must be at least 2",
		})
	}
	if c.Detection.ForestPoolCap < c.Detection.ForestSubsample {
		errs = append(errs, &ValidationError{
			Field:   "detection.forest_pool_cap",
			Message: "forest_pool_cap must be at least forest_subsample",
		})
	}
	if c.Detection.TemporalMinSamples < 2 {
		errs = append(errs, &ValidationError{
			Field:   "detection.temporal_min_samples",
			Message: "temporal_min_samples must be at least 2",
		})
	}
	if c.Detection.TemporalBufferCap < c.Detection.TemporalMinSamples {
		errs = append(errs, &ValidationError{
			Field:   "detection.temporal_buffer_cap",
			Message: "temporal_buffer_cap must be at least temporal_min_samples",
		})
	}

	// Validate alerting configuration
	if c.Alerting.DedupWindow <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "alerting.dedup_window",
			Message: "dedup_window must be positive",
		})
	}
	if c.Alerting.AutoAckAfter <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "alerting.auto_ack_after",
			Message: "auto_ack_after must be positive",
		})
	}
	if c.Alerting.HistoryCapacity < 1 {
		errs = append(errs, &ValidationError{
			Field:   "alerting.history_capacity",
			Message: "history_capacity must be at least 1",
		})
	}

	// Validate logging configuration
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, &ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("level must be one of debug, info, warn, error; got %q", c.Logging.Level),
		})
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, &ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("format must be json or console, got %q", c.Logging.Format),
		})
	}

	return errs
}
