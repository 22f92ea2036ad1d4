package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kislikjeka/walletledger/internal/platform/walletitem"
	"github.com/kislikjeka/walletledger/pkg/logger"
)

const writeTimeout = 5 * time.Second

// messageWriter is the subset of *kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ walletitem.EventPublisher = (*Publisher)(nil)

// Publisher sends wallet item events to a Kafka topic.
// Messages are keyed by wallet id so one wallet's events stay ordered.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *logger.Logger
}

// NewPublisher creates a publisher writing to topic on brokers
func NewPublisher(brokers []string, topic string, log *logger.Logger) *Publisher {
	return newPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           writeTimeout,
	}, topic, log)
}

func newPublisher(w messageWriter, topic string, log *logger.Logger) *Publisher {
	return &Publisher{
		writer: w,
		topic:  topic,
		logger: log.WithField("component", "kafka_publisher"),
	}
}

// Publish implements walletitem.EventPublisher
func (p *Publisher) Publish(ctx context.Context, event walletitem.ItemEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.WalletID, 10)),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID.String())},
			{Key: "kind", Value: []byte(event.Kind)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.Kind, p.topic, err)
	}

	p.logger.Debug("event published", "kind", event.Kind, "wallet_id", event.WalletID, "item_id", event.ItemID)
	return nil
}

// Close flushes pending messages and closes the writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}
