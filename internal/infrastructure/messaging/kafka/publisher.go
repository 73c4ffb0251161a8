// Package kafka publishes risk alerts to the message broker.
package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/openintel/casegraph/internal/application/intel"
	"github.com/openintel/casegraph/internal/config"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/logging"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/prometheus"
	"github.com/openintel/casegraph/pkg/errors"
)

// ErrPublisherClosed is returned when publishing after Close.
var ErrPublisherClosed = errors.New(errors.ErrCodeInternal, "alert publisher closed")

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AlertPublisher delivers risk alerts to the configured topic, keyed by
// person ID so alerts for the same person stay ordered within a partition.
type AlertPublisher struct {
	writer  WriterInterface
	topic   string
	logger  logging.Logger
	metrics *prometheus.AppMetrics
	closed  atomic.Bool
}

// NewAlertPublisher builds a publisher over a kafka-go writer. metrics may
// be nil.
func NewAlertPublisher(cfg config.KafkaConfig, log logging.Logger, metrics *prometheus.AppMetrics) *AlertPublisher {
	if log == nil {
		log = logging.NewNopLogger()
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 100 * time.Millisecond
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	retries := cfg.ProducerRetries
	if retries <= 0 {
		retries = 3
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.AlertTopic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  retries,
		BatchTimeout: batchTimeout,
		WriteTimeout: writeTimeout,
		RequiredAcks: kafka.RequireAll,
	}
	return &AlertPublisher{
		writer:  writer,
		topic:   cfg.AlertTopic,
		logger:  log.Named("kafka"),
		metrics: metrics,
	}
}

// newAlertPublisherWithWriter exists for tests.
func newAlertPublisherWithWriter(w WriterInterface, topic string, log logging.Logger, metrics *prometheus.AppMetrics) *AlertPublisher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &AlertPublisher{writer: w, topic: topic, logger: log, metrics: metrics}
}

// PublishRiskAlert sends one alert. The message value is the JSON-encoded
// alert; the key is the person ID.
func (p *AlertPublisher) PublishRiskAlert(ctx context.Context, alert intel.RiskAlert) error {
	if p.closed.Load() {
		return ErrPublisherClosed
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode risk alert")
	}

	start := time.Now()
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(alert.PersonID),
		Value: payload,
		Time:  alert.EmittedAt,
	})
	if p.metrics != nil {
		p.metrics.KafkaPublishDuration.WithLabelValues(p.topic).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeAlertPublishFailed, "").WithDetailf("person %s", alert.PersonID)
	}

	p.logger.Debug("risk alert published",
		logging.String("person_id", alert.PersonID),
		logging.String("topic", p.topic),
	)
	return nil
}

// Close flushes and shuts the writer down.
func (p *AlertPublisher) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to close kafka writer")
	}
	p.logger.Info("closed kafka alert publisher")
	return nil
}
