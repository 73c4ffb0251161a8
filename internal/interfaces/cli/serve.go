package cli

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openintel/casegraph/internal/application/geo"
	"github.com/openintel/casegraph/internal/application/intel"
	"github.com/openintel/casegraph/internal/config"
	"github.com/openintel/casegraph/internal/domain/casefile"
	"github.com/openintel/casegraph/internal/infrastructure/database/postgres"
	"github.com/openintel/casegraph/internal/infrastructure/database/redis"
	"github.com/openintel/casegraph/internal/infrastructure/messaging/kafka"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/logging"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/prometheus"
	httpapi "github.com/openintel/casegraph/internal/interfaces/http"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cfgPath, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, cfgPath)
		},
	}
}

func runServe(parent context.Context, cfg *config.Config, cfgPath string) error {
	logger, err := logging.NewLogger(logging.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: cfg.Log.OutputPaths,
	})
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting casegraph",
		logging.String("version", Version),
		logging.Int("port", cfg.Server.Port),
	)

	if cfgPath != "" {
		watchLogLevel(cfgPath, cfg.Log.Level, logger)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		appMetrics     *prometheus.AppMetrics
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		collector, cerr := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if cerr != nil {
			return fmt.Errorf("metrics initialization failed: %w", cerr)
		}
		appMetrics = prometheus.NewAppMetrics(collector)
		metricsHandler = collector.Handler()
	}

	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.RunMigrations(); err != nil {
		return err
	}

	var store casefile.Store = postgres.NewStore(conn, logger, appMetrics)

	health := map[string]httpapi.HealthChecker{
		"postgres": conn.HealthCheck,
	}

	if cfg.Redis.Enabled {
		client, rerr := redis.NewClient(ctx, cfg.Redis, logger)
		if rerr != nil {
			return rerr
		}
		defer client.Close()
		cache := redis.NewCache(client, logger)
		store = redis.NewCachingStore(store, cache, logger, appMetrics, cfg.Redis.DefaultTTL)
		health["redis"] = client.HealthCheck
	}

	var alerts intel.AlertPublisher
	if cfg.Kafka.Enabled {
		publisher := kafka.NewAlertPublisher(cfg.Kafka, logger, appMetrics)
		defer publisher.Close() //nolint:errcheck
		alerts = publisher
	}

	intelSvc := intel.NewService(store, cfg.Intel, logger, appMetrics, alerts)
	geoSvc := geo.NewService(store, cfg.Geo, logger, appMetrics)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		IntelService:   intelSvc,
		GeoService:     geoSvc,
		Health:         health,
		Logger:         logger,
		Metrics:        appMetrics,
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Metrics.Path,
		Mode:           cfg.Server.Mode,
	})

	srv := httpapi.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	}

	return srv.Stop(context.Background())
}

// watchLogLevel hot-reloads the log level when the config file changes. Other
// settings require a restart; only the level is safe to swap at runtime.
func watchLogLevel(cfgPath, current string, logger logging.Logger) {
	setter, ok := logger.(logging.LevelSetter)
	if !ok {
		return
	}
	level := current
	config.Watch(cfgPath, func(next *config.Config) {
		if next.Log.Level == level {
			return
		}
		setter.SetLevel(next.Log.Level)
		logger.Info("log level changed",
			logging.String("from", level),
			logging.String("to", next.Log.Level),
		)
		level = next.Log.Level
	})
}
