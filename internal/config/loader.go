package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all engine settings.
const envPrefix = "CASEGRAPH"

// newViper builds a pre-configured viper instance: YAML file type,
// CASEGRAPH_ env prefix, automatic env binding, and a "." to "_" key
// replacer so "database.host" resolves to "CASEGRAPH_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindKnownKeys(v)
	return v
}

// bindKnownKeys makes every configuration key visible to viper so that
// environment-only values survive Unmarshal. Viper ignores unbound keys
// when no config file sets them.
func bindKnownKeys(v *viper.Viper) {
	keys := []string{
		"server.port", "server.mode", "server.read_timeout",
		"server.write_timeout", "server.shutdown_timeout",
		"database.host", "database.port", "database.user",
		"database.password", "database.db_name", "database.ssl_mode",
		"database.max_conns", "database.min_conns",
		"database.conn_max_lifetime", "database.conn_max_idle_time",
		"redis.enabled", "redis.addr", "redis.password", "redis.db",
		"redis.pool_size", "redis.min_idle_conns", "redis.dial_timeout",
		"redis.read_timeout", "redis.write_timeout", "redis.default_ttl",
		"redis.key_prefix",
		"kafka.enabled", "kafka.brokers", "kafka.alert_topic",
		"kafka.producer_retries", "kafka.batch_timeout", "kafka.write_timeout",
		"log.level", "log.format", "log.output_paths",
		"intel.related_case_radius_km", "intel.related_case_window_days",
		"intel.default_limit", "intel.max_limit",
		"intel.repeat_offender_min_cases", "intel.risk_proximity_radius_km",
		"geo.default_cell_size_meters", "geo.max_grid_cells",
		"geo.cluster_radius_meters", "geo.cluster_min_points",
		"metrics.enabled", "metrics.namespace", "metrics.path",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

// Load reads the YAML file at configPath, merges CASEGRAPH_* environment
// overrides, applies defaults for unset fields, and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from CASEGRAPH_* environment
// variables with no config file. This is the preferred strategy for
// containerised deployments.
//
// Naming convention: CASEGRAPH_<SECTION>_<FIELD>, e.g.
// CASEGRAPH_DATABASE_HOST, CASEGRAPH_REDIS_ADDR.
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the newly parsed
// Config whenever the file changes on disk. Intended for hot-reloading
// non-critical settings such as log level; callers apply only the safe
// subset at runtime. A change that fails to parse or validate is dropped
// without invoking onChange.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Errors on the initial read are ignored; callers call Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad wraps Load and panics on error. For use in main() where a
// config failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
