package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openintel/casegraph/internal/infrastructure/monitoring/prometheus"
)

// HealthChecker reports whether one backing component is reachable.
type HealthChecker func(ctx context.Context) error

const readinessTimeout = 3 * time.Second

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	checkers map[string]HealthChecker
	metrics  *prometheus.AppMetrics
}

func NewHealthHandler(checkers map[string]HealthChecker, metrics *prometheus.AppMetrics) *HealthHandler {
	return &HealthHandler{checkers: checkers, metrics: metrics}
}

// Liveness reports that the process is up.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness pings every registered component and fails if any is down.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	components := make(map[string]string, len(h.checkers))
	ready := true
	for name, check := range h.checkers {
		status := "ok"
		up := 1.0
		if err := check(ctx); err != nil {
			status = err.Error()
			up = 0
			ready = false
		}
		components[name] = status
		if h.metrics != nil {
			h.metrics.HealthCheckStatus.WithLabelValues(name).Set(up)
		}
	}

	code := http.StatusOK
	overall := "ok"
	if !ready {
		code = http.StatusServiceUnavailable
		overall = "degraded"
	}
	c.JSON(code, gin.H{"status": overall, "components": components})
}
