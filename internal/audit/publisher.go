// Package audit publishes appended history records to Kafka.
package audit

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"

	"github.com/neexbeast/travel-planner/internal/travel"
)

// Publisher sends history records to a Kafka topic, keyed by record id.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher connects a sync producer to brokers. Every send waits for all
// in-sync replicas to acknowledge.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}

	return NewPublisherWithProducer(producer, topic), nil
}

// NewPublisherWithProducer wraps an existing producer (for tests).
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

// Publish sends rec as JSON and returns once the broker has acknowledged it.
func (p *Publisher) Publish(rec travel.HistoryRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling history record %d: %w", rec.ID, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(rec.ID, 10)),
		Value: sarama.ByteEncoder(b),
	}

	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("publishing history record %d to %s: %w", rec.ID, p.topic, err)
	}

	return nil
}

// Close flushes and shuts down the producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
