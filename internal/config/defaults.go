package config

import "time"

// DefaultConfig returns a configuration with all default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	// Server defaults
	cfg.Server.Port = 8080
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

	// Simulation defaults
	cfg.Simulation.TickInterval = time.Second
	cfg.Simulation.OrbitalPeriod = 5400 * time.Second
	cfg.Simulation.FaultDuration = 30 * time.Second
	cfg.Simulation.HistoryCapacity = 300
	cfg.Simulation.PrefillPoints = 60

	// Detection defaults
	cfg.Detection.StatWindow = 100
	cfg.Detection.StatMinSamples = 20
	cfg.Detection.ForestPoolCap = 500
	cfg.Detection.ForestTrees = 10
	cfg.Detection.ForestSubsample = 50
	cfg.Detection.ForestRetrainEvery = 50
	cfg.Detection.ForestRetrainMinObs = 100
	cfg.Detection.TemporalBufferCap = 200
	cfg.Detection.TemporalMinSamples = 30
	cfg.Detection.TemporalRecentWindow = 30

	// Alerting defaults
	cfg.Alerting.DedupWindow = 30 * time.Second
	cfg.Alerting.AutoAckAfter = 5 * time.Minute
	cfg.Alerting.HistoryCapacity = 1000

	// Logging defaults
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	cfg.Logging.FilePath = ""
	cfg.Logging.MaxSizeMB = 100
	cfg.Logging.MaxBackups = 10
	cfg.Logging.MaxAgeDays = 30
	cfg.Logging.Compress = true

	return cfg
}
