package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openintel/casegraph/internal/application/intel"
	"github.com/openintel/casegraph/pkg/errors"
)

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func sampleAlert() intel.RiskAlert {
	return intel.RiskAlert{
		PersonID:  "p-1",
		RiskScore: 14.5,
		RiskLevel: "HIGH",
		EmittedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublishRiskAlert(t *testing.T) {
	writer := new(MockWriter)
	pub := newAlertPublisherWithWriter(writer, "risk-alerts", nil, nil)

	writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 {
			return false
		}
		var alert intel.RiskAlert
		if err := json.Unmarshal(msgs[0].Value, &alert); err != nil {
			return false
		}
		return string(msgs[0].Key) == "p-1" && alert.RiskLevel == "HIGH" && alert.RiskScore == 14.5
	})).Return(nil)

	err := pub.PublishRiskAlert(context.Background(), sampleAlert())
	require.NoError(t, err)
	writer.AssertExpectations(t)
}

func TestPublishRiskAlertWriteFailure(t *testing.T) {
	writer := new(MockWriter)
	pub := newAlertPublisherWithWriter(writer, "risk-alerts", nil, nil)

	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(assert.AnError)

	err := pub.PublishRiskAlert(context.Background(), sampleAlert())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAlertPublishFailed))
}

func TestPublishAfterClose(t *testing.T) {
	writer := new(MockWriter)
	pub := newAlertPublisherWithWriter(writer, "risk-alerts", nil, nil)

	writer.On("Close").Return(nil)
	require.NoError(t, pub.Close())
	// Second close is a no-op.
	require.NoError(t, pub.Close())

	err := pub.PublishRiskAlert(context.Background(), sampleAlert())
	assert.ErrorIs(t, err, ErrPublisherClosed)
	writer.AssertNumberOfCalls(t, "Close", 1)
}
