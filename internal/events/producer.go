// Package events streams parameter changes to Kafka for downstream systems
// (warehouse loads, alerting, model retraining). The stream is an observer of
// the simulation pipeline: publish failures are logged and counted, never
// surfaced to the update path.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/pulsehq/clientpulse/internal/metrics"
	"github.com/pulsehq/clientpulse/internal/simulation"
)

// ParamChange is the record published for every recomputation. Messages are
// keyed by session ID so one session's changes stay ordered within a partition.
type ParamChange struct {
	SessionID string            `json:"sessionId"`
	Params    simulation.Params `json:"params"`
	At        time.Time         `json:"at"`
}

// Producer publishes parameter-change records to a Kafka topic.
type Producer struct {
	writer  *kafka.Writer
	logger  *slog.Logger
	timeout time.Duration
}

// NewProducer creates a Kafka producer for the given brokers and topic.
func NewProducer(brokers []string, topic string, logger *slog.Logger) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		logger:  logger,
		timeout: 5 * time.Second,
	}
}

// Observer returns a simulation observer that publishes each parameter change.
func (p *Producer) Observer() simulation.Observer {
	return func(sessionID string, params simulation.Params) {
		if err := p.publish(sessionID, params); err != nil {
			metrics.StreamPublishesTotal.WithLabelValues("error").Inc()
			p.logger.Warn("failed to publish param change",
				"session_id", sessionID,
				"error", err,
			)
			return
		}
		metrics.StreamPublishesTotal.WithLabelValues("ok").Inc()
	}
}

func (p *Producer) publish(sessionID string, params simulation.Params) error {
	data, err := json.Marshal(ParamChange{
		SessionID: sessionID,
		Params:    params,
		At:        time.Now(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(sessionID),
		Value: data,
	})
}

// Close flushes and closes the Kafka writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
