package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"chat_relay_service/internal/chat/domain"

	"github.com/segmentio/kafka-go"
)

// EventPublisher exports message events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.MessageEvent) error
	Close() error
}

// KafkaWriter is the part of *kafka.Writer the publisher needs.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaEventPublisher struct {
	writer KafkaWriter
}

// NewKafkaEventPublisher publishes events keyed by chat id, so one chat stays on one partition.
func NewKafkaEventPublisher(writer KafkaWriter) EventPublisher {
	return &kafkaEventPublisher{writer: writer}
}

func (p *kafkaEventPublisher) Publish(ctx context.Context, event domain.MessageEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.Message.ChatID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	})
}

func (p *kafkaEventPublisher) Close() error {
	return p.writer.Close()
}

type nopEventPublisher struct{}

// NewNopEventPublisher is used when no brokers are configured.
func NewNopEventPublisher() EventPublisher {
	return nopEventPublisher{}
}

func (nopEventPublisher) Publish(context.Context, domain.MessageEvent) error { return nil }

func (nopEventPublisher) Close() error { return nil }
