package config

import "time"

// ApplyDefaults fills every unset field of cfg with its production default.
// Explicitly configured values are never overwritten.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "casegraph"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "casegraph"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30 * time.Minute
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = 5 * time.Minute
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "casegraph"
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{"localhost:9092"}
	}
	if cfg.Kafka.AlertTopic == "" {
		cfg.Kafka.AlertTopic = "casegraph.risk-alerts"
	}
	if cfg.Kafka.ProducerRetries == 0 {
		cfg.Kafka.ProducerRetries = 3
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = 100 * time.Millisecond
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stdout"}
	}

	if cfg.Intel.RelatedCaseRadiusKM == 0 {
		cfg.Intel.RelatedCaseRadiusKM = 5
	}
	if cfg.Intel.RelatedCaseWindowDays == 0 {
		cfg.Intel.RelatedCaseWindowDays = 30
	}
	if cfg.Intel.DefaultLimit == 0 {
		cfg.Intel.DefaultLimit = 10
	}
	if cfg.Intel.MaxLimit == 0 {
		cfg.Intel.MaxLimit = 100
	}
	if cfg.Intel.RepeatOffenderMinCases == 0 {
		cfg.Intel.RepeatOffenderMinCases = 3
	}
	if cfg.Intel.RiskProximityRadiusKM == 0 {
		cfg.Intel.RiskProximityRadiusKM = 10
	}

	if cfg.Geo.DefaultCellSizeMeters == 0 {
		cfg.Geo.DefaultCellSizeMeters = 250
	}
	if cfg.Geo.MaxGridCells == 0 {
		cfg.Geo.MaxGridCells = 100
	}
	if cfg.Geo.ClusterRadiusMeters == 0 {
		cfg.Geo.ClusterRadiusMeters = 500
	}
	if cfg.Geo.ClusterMinPoints == 0 {
		cfg.Geo.ClusterMinPoints = 3
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "casegraph"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
