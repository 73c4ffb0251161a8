// Package config defines all configuration structures for the casegraph
// engine. No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// RedisConfig holds Redis connection and cache parameters.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds the alert producer parameters.
type KafkaConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Brokers         []string      `mapstructure:"brokers"`
	AlertTopic      string        `mapstructure:"alert_topic"`
	ProducerRetries int           `mapstructure:"producer_retries"`
	BatchTimeout    time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// IntelConfig holds defaults and bounds for the correlation analyzers.
type IntelConfig struct {
	// RelatedCaseRadiusKM is the default geographic radius for related-case
	// search when the caller does not supply one.
	RelatedCaseRadiusKM float64 `mapstructure:"related_case_radius_km"`
	// RelatedCaseWindowDays is the default temporal window for related-case
	// search.
	RelatedCaseWindowDays int `mapstructure:"related_case_window_days"`
	// DefaultLimit is the default maximum number of results per analysis.
	DefaultLimit int `mapstructure:"default_limit"`
	// MaxLimit caps caller-supplied limits.
	MaxLimit int `mapstructure:"max_limit"`
	// RepeatOffenderMinCases is the minimum case count that qualifies a
	// person as a repeat offender.
	RepeatOffenderMinCases int `mapstructure:"repeat_offender_min_cases"`
	// RiskProximityRadiusKM is the radius used to count nearby active cases
	// for the proximity component of the risk score.
	RiskProximityRadiusKM float64 `mapstructure:"risk_proximity_radius_km"`
}

// GeoConfig holds defaults for heatmap and cluster analysis.
type GeoConfig struct {
	// DefaultCellSizeMeters is the heatmap cell edge when the caller does
	// not supply one.
	DefaultCellSizeMeters float64 `mapstructure:"default_cell_size_meters"`
	// MaxGridCells caps the total number of heatmap cells.
	MaxGridCells int `mapstructure:"max_grid_cells"`
	// ClusterRadiusMeters is the default neighbourhood radius for cluster
	// detection.
	ClusterRadiusMeters float64 `mapstructure:"cluster_radius_meters"`
	// ClusterMinPoints is the default minimum cluster size.
	ClusterMinPoints int `mapstructure:"cluster_min_points"`
}

// MetricsConfig holds prometheus exposure parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// Config is the root configuration for the engine. Every infrastructure
// component and application service reads its settings from the relevant
// sub-struct.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Log      LogConfig      `mapstructure:"log"`
	Intel    IntelConfig    `mapstructure:"intel"`
	Geo      GeoConfig      `mapstructure:"geo"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// Validate performs semantic validation of the fully-populated Config.
// Any error is fatal; the application must refuse to start.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis is enabled")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
		}
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.AlertTopic == "" {
			return fmt.Errorf("config: kafka.alert_topic is required when kafka is enabled")
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Intel.RelatedCaseRadiusKM <= 0 {
		return fmt.Errorf("config: intel.related_case_radius_km must be > 0, got %g", c.Intel.RelatedCaseRadiusKM)
	}
	if c.Intel.RelatedCaseWindowDays < 1 {
		return fmt.Errorf("config: intel.related_case_window_days must be >= 1, got %d", c.Intel.RelatedCaseWindowDays)
	}
	if c.Intel.DefaultLimit < 1 || c.Intel.DefaultLimit > c.Intel.MaxLimit {
		return fmt.Errorf("config: intel.default_limit %d must be in [1, max_limit=%d]", c.Intel.DefaultLimit, c.Intel.MaxLimit)
	}
	if c.Intel.RepeatOffenderMinCases < 2 {
		return fmt.Errorf("config: intel.repeat_offender_min_cases must be >= 2, got %d", c.Intel.RepeatOffenderMinCases)
	}
	if c.Intel.RiskProximityRadiusKM <= 0 {
		return fmt.Errorf("config: intel.risk_proximity_radius_km must be > 0, got %g", c.Intel.RiskProximityRadiusKM)
	}

	if c.Geo.DefaultCellSizeMeters <= 0 {
		return fmt.Errorf("config: geo.default_cell_size_meters must be > 0, got %g", c.Geo.DefaultCellSizeMeters)
	}
	if c.Geo.MaxGridCells < 1 {
		return fmt.Errorf("config: geo.max_grid_cells must be >= 1, got %d", c.Geo.MaxGridCells)
	}
	if c.Geo.ClusterRadiusMeters <= 0 {
		return fmt.Errorf("config: geo.cluster_radius_meters must be > 0, got %g", c.Geo.ClusterRadiusMeters)
	}
	if c.Geo.ClusterMinPoints < 1 {
		return fmt.Errorf("config: geo.cluster_min_points must be >= 1, got %d", c.Geo.ClusterMinPoints)
	}

	return nil
}
