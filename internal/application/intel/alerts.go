package intel

import (
	"context"
	"time"
)

// RiskAlert is the event published when a person's assessed risk band is
// HIGH. Downstream consumers subscribe via the message broker.
type RiskAlert struct {
	PersonID  string    `json:"person_id"`
	RiskScore float64   `json:"risk_score"`
	RiskLevel string    `json:"risk_level"`
	EmittedAt time.Time `json:"emitted_at"`
}

// AlertPublisher delivers risk alerts to downstream consumers. Publishing
// is fire-and-forget from the scorer's perspective: failures are logged and
// never fail the assessment.
type AlertPublisher interface {
	PublishRiskAlert(ctx context.Context, alert RiskAlert) error
}
