package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Manager loads, validates, and watches configuration.
type Manager interface {
	Load(ctx context.Context) error
	Get(ctx context.Context) *Config
	Validate(ctx context.Context) error
	Watch(ctx context.Context) <-chan Config
	Reload(ctx context.Context) error
}

// viperManager implements Manager using Viper.
type viperManager struct {
	configPath string
	config     *Config
	viper      *viper.Viper
	watchChan  chan Config
}

// NewManager creates a Manager reading the given config file path. The file
// is optional; defaults and SATWATCH_* environment variables always apply.
func NewManager(configPath string) Manager {
	return &viperManager{
		configPath: configPath,
		watchChan:  make(chan Config, 1),
	}
}

// defaultConfigPath is used when no explicit config path is given.
const defaultConfigPath = "/etc/satwatch/config.yaml"

// Load loads configuration from all sources.
func (m *viperManager) Load(ctx context.Context) error {
	m.viper = viper.New()

	path := m.configPath
	if path == "" {
		path = defaultConfigPath
	}
	m.viper.SetConfigFile(path)
	m.viper.SetConfigType("yaml")

	m.viper.SetEnvPrefix("SATWATCH")
	m.viper.AutomaticEnv()
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	m.setDefaults()

	// Config file is optional; defaults + env vars cover everything.
	if err := m.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// File not found via viper - OK, use defaults
		} else if os.IsNotExist(err) {
			// File not found via os - OK, use defaults
		} else {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	m.unmarshalConfig()
	return nil
}

// Get returns the current configuration.
func (m *viperManager) Get(ctx context.Context) *Config {
	return m.config
}

// Validate validates configuration is correct and complete.
func (m *viperManager) Validate(ctx context.Context) error {
	errs := m.config.Validate()
	if len(errs) > 0 {
		var errMsgs []string
		for _, err := range errs {
			errMsgs = append(errMsgs, err.Error())
		}
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errMsgs, "\n  - "))
	}
	return nil
}

// Watch watches for configuration changes and reloads.
func (m *viperManager) Watch(ctx context.Context) <-chan Config {
	m.viper.WatchConfig()
	m.viper.OnConfigChange(func(e fsnotify.Event) {
		m.unmarshalConfig()
		select {
		case m.watchChan <- *m.config:
		default:
			// Channel full, skip this update
		}
	})
	return m.watchChan
}

// Reload reloads configuration from sources.
func (m *viperManager) Reload(ctx context.Context) error {
	if err := m.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	m.unmarshalConfig()
	return nil
}

// setDefaults sets default values in viper.
func (m *viperManager) setDefaults() {
	defaults := DefaultConfig()

	// Server defaults
	m.viper.SetDefault("server.port", defaults.Server.Port)
	m.viper.SetDefault("server.allowed_origins", defaults.Server.AllowedOrigins)

	// Simulation defaults
	m.viper.SetDefault("simulation.tick_interval", defaults.Simulation.TickInterval)
	m.viper.SetDefault("simulation.orbital_period", defaults.Simulation.OrbitalPeriod)
	m.viper.SetDefault("simulation.fault_duration", defaults.Simulation.FaultDuration)
	m.viper.SetDefault("simulation.history_capacity", defaults.Simulation.HistoryCapacity)
	m.viper.SetDefault("simulation.prefill_points", defaults.Simulation.PrefillPoints)

	// Detection defaults
	m.viper.SetDefault("detection.stat_window", defaults.Detection.StatWindow)
	m.viper.SetDefault("detection.stat_min_samples", defaults.Detection.StatMinSamples)
	m.viper.SetDefault("detection.forest_pool_cap", defaults.Detection.ForestPoolCap)
	m.viper.SetDefault("detection.forest_trees", defaults.Detection.ForestTrees)
	m.viper.SetDefault("detection.forest_subsample", defaults.Detection.ForestSubsample)
	m.viper.SetDefault("detection.forest_retrain_every", defaults.Detection.ForestRetrainEvery)
	m.viper.SetDefault("detection.forest_retrain_min_obs", defaults.Detection.ForestRetrainMinObs)
	m.viper.SetDefault("detection.temporal_buffer_cap", defaults.Detection.TemporalBufferCap)
	m.viper.SetDefault("detection.temporal_min_samples", defaults.Detection.TemporalMinSamples)
	m.viper.SetDefault("detection.temporal_recent_window", defaults.Detection.TemporalRecentWindow)

	// Alerting defaults
	m.viper.SetDefault("alerting.dedup_window", defaults.Alerting.DedupWindow)
	m.viper.SetDefault("alerting.auto_ack_after", defaults.Alerting.AutoAckAfter)
	m.viper.SetDefault("alerting.history_capacity", defaults.Alerting.HistoryCapacity)

	// Logging defaults
	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
	m.viper.SetDefault("logging.file_path", defaults.Logging.FilePath)
	m.viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	m.viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	m.viper.SetDefault("logging.max_age_days", defaults.Logging.MaxAgeDays)
	m.viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

// unmarshalConfig unmarshals viper config into the Config struct.
func (m *viperManager) unmarshalConfig() {
	cfg := &Config{}

	// Server
	cfg.Server.Port = m.viper.GetInt("server.port")
	cfg.Server.AllowedOrigins = m.viper.GetStringSlice("server.allowed_origins")

	// Simulation
	cfg.Simulation.TickInterval = m.viper.GetDuration("simulation.tick_interval")
	cfg.Simulation.OrbitalPeriod = m.viper.GetDuration("simulation.orbital_period")
	cfg.Simulation.FaultDuration = m.viper.GetDuration("simulation.fault_duration")
	cfg.Simulation.HistoryCapacity = m.viper.GetInt("simulation.history_capacity")
	cfg.Simulation.PrefillPoints = m.viper.GetInt("simulation.prefill_points")

	// Detection
	cfg.Detection.StatWindow = m.viper.GetInt("detection.stat_window")
	cfg.Detection.StatMinSamples = m.viper.GetInt("detection.stat_min_samples")
	cfg.Detection.ForestPoolCap = m.viper.GetInt("detection.forest_pool_cap")
	cfg.Detection.ForestTrees = m.viper.GetInt("detection.forest_trees")
	cfg.Detection.ForestSubsample = m.viper.GetInt("detection.forest_subsample")
	cfg.Detection.ForestRetrainEvery = m.viper.GetInt("detection.forest_retrain_every")
	cfg.Detection.ForestRetrainMinObs = m.viper.GetInt("detection.forest_retrain_min_obs")
	cfg.Detection.TemporalBufferCap = m.viper.GetInt("detection.temporal_buffer_cap")
	cfg.Detection.TemporalMinSamples = m.viper.GetInt("detection.temporal_min_samples")
	cfg.Detection.TemporalRecentWindow = m.viper.GetInt("detection.temporal_recent_window")

	// Alerting
	cfg.Alerting.DedupWindow = m.viper.GetDuration("alerting.dedup_window")
	cfg.Alerting.AutoAckAfter = m.viper.GetDuration("alerting.auto_ack_after")
	cfg.Alerting.HistoryCapacity = m.viper.GetInt("alerting.history_capacity")

	// Logging
	cfg.Logging.Level = m.viper.GetString("logging.level")
	cfg.Logging.Format = m.viper.GetString("logging.format")
	cfg.Logging.FilePath = m.viper.GetString("logging.file_path")
	cfg.Logging.MaxSizeMB = m.viper.GetInt("logging.max_size_mb")
	cfg.Logging.MaxBackups = m.viper.GetInt("logging.max_backups")
	cfg.Logging.MaxAgeDays = m.viper.GetInt("logging.max_age_days")
	cfg.Logging.Compress = m.viper.GetBool("logging.compress")

	m.config = cfg
}
