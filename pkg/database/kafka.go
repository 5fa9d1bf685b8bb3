package database

import (
	"context"
	"fmt"
	"time"

	"chat_relay_service/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NewKafkaWriterWithRetry dials the first reachable broker before handing out a writer.
func NewKafkaWriterWithRetry(ctx context.Context, k KafkaConnection) (*kafka.Writer, error) {
	if len(k.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}

	err := retry(k.RetryCount, k.RetryInterval, func(attempt int) error {
		conn, dialErr := kafka.DialContext(ctx, "tcp", k.Brokers[0])
		if dialErr != nil {
			logger.Log.Warn("Kafka dial failed, retrying...",
				zap.Int("attempt", attempt),
				zap.Strings("brokers", k.Brokers),
				zap.Error(dialErr),
			)
			return dialErr
		}
		return conn.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("kafka: unreachable after %d attempts: %w", k.RetryCount, err)
	}

	return &kafka.Writer{
		Addr:                   kafka.TCP(k.Brokers...),
		Topic:                  k.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		Async:                  true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Log.Warn("Kafka async write failed", zap.Int("messages", len(messages)), zap.Error(err))
			}
		},
	}, nil
}
