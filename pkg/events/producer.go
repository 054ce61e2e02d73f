package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glucora-health/screening/pkg/common/logger"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// AssessmentEvent is published after every completed scoring request so
// downstream surveillance can track screening outcomes. It carries no form
// inputs, only the outcome.
type AssessmentEvent struct {
	ID           string    `json:"id"`
	AssessmentID string    `json:"assessment_id"`
	Probability  float64   `json:"probability"`
	Tier         string    `json:"tier"`
	ModelVersion string    `json:"model_version"`
	Timestamp    time.Time `json:"timestamp"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer}
}

func (p *Producer) PublishAssessment(ctx context.Context, assessmentID string, probability float64, tier string, modelVersion string) error {
	event := AssessmentEvent{
		ID:           uuid.New().String(),
		AssessmentID: assessmentID,
		Probability:  probability,
		Tier:         tier,
		ModelVersion: modelVersion,
		Timestamp:    time.Now().UTC(),
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.ID),
		Value: eventBytes,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("assessment.completed")},
			{Key: "tier", Value: []byte(tier)},
		},
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"event_id":      event.ID,
			"assessment_id": assessmentID,
		}).Error("Failed to publish assessment event")
		return err
	}

	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
