package config

import "time"

// Package config provides configuration management for satwatch.
//
// Responsibilities:
//   - Load configuration from YAML files and environment variables
//   - Validate configuration on startup
//   - Provide runtime access to all configuration
//   - Support configuration watching for reload
//   - Establish reasonable defaults
//
// Configuration Sources (priority order, high to low):
//   1. Environment variables (SATWATCH_* prefix)
//   2. YAML config file (default: /etc/satwatch/config.yaml)
//   3. Built-in defaults (lowest priority)
//
// Main Configuration Sections:
//
//   1. Server
//      - port: Listen port (default 8080)
//      - allowed_origins: Origins permitted to open WebSocket connections
//
//   2. Simulation
//      - tick_interval: Telemetry generation cadence
//      - orbital_period: Seconds per simulated orbit
//      - fault_duration: How long an injected fault stays active
//      - history_capacity: Rolling telemetry history per category
//      - prefill_points: Historical points generated at startup
//
//   3. Detection
//      - statistical window/min-sample parameters
//      - partitioning scorer pool/ensemble/retrain parameters
//      - temporal scorer buffer/baseline parameters
//
//   4. Alerting
//      - dedup_window: Window within which identical alerts are suppressed
//      - auto_ack_after: Age at which unacknowledged alerts auto-acknowledge
//      - history_capacity: Maximum retained alerts
//
//   5. Logging
//      - level: "debug" | "info" | "warn" | "error"
//      - format: "json" | "console"
//      - file rotation settings (lumberjack)

// Config contains all configuration fields.
type Config struct {
	// Server configuration
	Server struct {
		Port int
		// AllowedOrigins is a list of origins permitted to open WebSocket
		// connections. Use ["*"] to allow any origin (development only).
		AllowedOrigins []string
	}

	// Simulation configuration
	Simulation struct {
		TickInterval    time.Duration
		OrbitalPeriod   time.Duration
		FaultDuration   time.Duration
		HistoryCapacity int
		PrefillPoints   int
	}

	// Detection configuration
	Detection struct {
		StatWindow     int
		StatMinSamples int

		ForestPoolCap       int
		ForestTrees         int
		ForestSubsample     int
		ForestRetrainEvery  int
		ForestRetrainMinObs int

		TemporalBufferCap    int
		TemporalMinSamples   int
		TemporalRecentWindow int
	}

	// Alerting configuration
	Alerting struct {
		DedupWindow     time.Duration
		AutoAckAfter    time.Duration
		HistoryCapacity int
	}

	// Logging configuration
	Logging struct {
		Level      string
		Format     string
		FilePath   string // empty disables file logging
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
		Compress   bool
	}
}
