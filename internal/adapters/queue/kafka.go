// Package queue moves notification deliveries through Kafka so that a separate
// notifier process can talk to email and push providers.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"eventlottery/internal/domain"
)

// Delivery is the message payload: the stored notification and its resolved recipient.
type Delivery struct {
	Notification *domain.Notification `json:"notification"`
	Recipient    *domain.Entrant      `json:"recipient,omitempty"`
}

// MessageWriter is the part of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// writerBatchTimeout bounds how long a synchronous publish waits for its batch to fill.
const writerBatchTimeout = 10 * time.Millisecond

// NewWriter returns a writer that keys messages by recipient so one entrant's
// deliveries stay ordered within a partition.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: writerBatchTimeout,
	}
}

func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
}

// Producer is a domain.Deliverer that enqueues deliveries instead of sending them.
type Producer struct {
	writer MessageWriter
}

func NewProducer(writer MessageWriter) *Producer {
	return &Producer{writer: writer}
}

func (p *Producer) Deliver(ctx context.Context, n *domain.Notification, recipient *domain.Entrant) error {
	payload, err := json.Marshal(Delivery{Notification: n, Recipient: recipient})
	if err != nil {
		return fmt.Errorf("encode delivery: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(n.RecipientID)),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish delivery: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Consumer reads deliveries and hands them to a Deliverer.
type Consumer struct {
	reader MessageReader
	logger *slog.Logger
}

func NewConsumer(reader MessageReader, logger *slog.Logger) *Consumer {
	return &Consumer{reader: reader, logger: logger}
}

// Run delivers messages until ctx is done. Undecodable messages and failed deliveries
// are logged and committed; delivery is best-effort.
func (c *Consumer) Run(ctx context.Context, deliverer domain.Deliverer) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}
		c.handle(ctx, msg, deliverer)
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit message: %w", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message, deliverer domain.Deliverer) {
	var d Delivery
	if err := json.Unmarshal(msg.Value, &d); err != nil || d.Notification == nil {
		c.logger.ErrorContext(ctx, "discarding malformed delivery", "offset", msg.Offset, "partition", msg.Partition, "err", err)
		return
	}
	if err := deliverer.Deliver(ctx, d.Notification, d.Recipient); err != nil {
		c.logger.WarnContext(ctx, "deliver notification", "notification_id", d.Notification.ID, "err", err)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
