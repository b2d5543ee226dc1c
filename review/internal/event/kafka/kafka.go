package kafka

import (
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"

	"github.com/cinelogapp/cinelog/review/pkg/model"
)

// Publisher emits review events to a Kafka topic. Publishing is
// best-effort: delivery failures are logged by the report goroutine.
type Publisher struct {
	producer *kafka.Producer
	topic    string
	logger   *zap.Logger
}

func NewPublisher(bootstrapServers, topic string, logger *zap.Logger) (*Publisher, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": bootstrapServers,
	})
	if err != nil {
		return nil, err
	}
	p := &Publisher{producer: producer, topic: topic, logger: logger}
	go func() {
		for e := range producer.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					logger.Warn("Review event delivery failed",
						zap.String("topicPartition", ev.TopicPartition.String()))
				}
			}
		}
	}()
	return p, nil
}

// Publish enqueues one review event.
func (p *Publisher) Publish(ctx context.Context, event model.ReviewEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Value:          payload,
	}, nil)
}

// Close flushes outstanding messages and closes the producer.
func (p *Publisher) Close() {
	p.producer.Flush(10_000)
	p.producer.Close()
}
