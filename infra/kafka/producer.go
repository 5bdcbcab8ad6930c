// Package kafka wraps the kafka-go writer used for trade feed egress.
package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	batchTimeout = 25 * time.Millisecond
	writeTimeout = 2 * time.Second
)

// Producer publishes keyed messages to a single topic. The trade feed
// is best effort: an event that fails to send is logged and dropped by
// the caller, never replayed, so writes ack on the partition leader
// only and a slow broker is cut off by the write timeout instead of
// backing up into the drain loop. Messages keyed by symbol hash to one
// partition, keeping per-symbol feed order.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Compression:  kafka.Snappy,
			BatchTimeout: batchTimeout,
			WriteTimeout: writeTimeout,
		},
	}
}

// Send publishes one keyed message. The error reports this message
// only; the writer stays usable afterwards.
func (p *Producer) Send(ctx context.Context, key, value []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
