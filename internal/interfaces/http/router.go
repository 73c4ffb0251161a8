package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openintel/casegraph/internal/application/geo"
	"github.com/openintel/casegraph/internal/application/intel"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/logging"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/prometheus"
)

// RouterConfig carries everything the router needs wired in.
type RouterConfig struct {
	IntelService intel.Service
	GeoService   geo.Service
	Health       map[string]HealthChecker
	Logger       logging.Logger
	Metrics      *prometheus.AppMetrics

	// MetricsHandler, when non-nil, is mounted at MetricsPath.
	MetricsHandler http.Handler
	MetricsPath    string

	// Mode is a gin mode: debug, release or test. Empty means release.
	Mode string
}

// NewRouter builds the gin engine with all routes and middleware attached.
func NewRouter(cfg RouterConfig) *gin.Engine {
	mode := cfg.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	log := cfg.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.Named("http")

	r := gin.New()
	r.Use(RequestID())
	r.Use(Recovery(log))
	r.Use(RequestLogger(log, cfg.Metrics))

	health := NewHealthHandler(cfg.Health, cfg.Metrics)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)

	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	NewIntelHandler(cfg.IntelService).RegisterRoutes(api)
	NewGeoHandler(cfg.GeoService).RegisterRoutes(api)

	return r
}
