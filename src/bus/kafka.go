// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package bus

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

const defaultKafkaTimeout = 5 * time.Second

// KafkaConfig holds the parameters of a KafkaPublisher
type KafkaConfig struct {
	Brokers []string
	Topic   string
	// Timeout bounds each write. Defaults to 5 seconds.
	Timeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// A KafkaPublisher publishes messages to a Kafka topic, keyed by channel.
// Values are the JSON encoding of the Message.
type KafkaPublisher struct {
	cfg    KafkaConfig
	writer messageWriter
}

// NewKafkaPublisher returns a KafkaPublisher writing to the configured topic
func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, errors.New("kafka topic must not be empty")
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		RequiredAcks:           kafka.RequireOne,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisherWithWriter(cfg, writer), nil
}

// newKafkaPublisherWithWriter returns a KafkaPublisher using the given writer.
func newKafkaPublisherWithWriter(cfg KafkaConfig, writer messageWriter) *KafkaPublisher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultKafkaTimeout
	}
	return &KafkaPublisher{cfg: cfg, writer: writer}
}

// Publish writes the given payload to the topic
func (kp *KafkaPublisher) Publish(ctx context.Context, channel string, payload interface{}) error {
	value, err := json.Marshal(Message{Channel: channel, Payload: payload})
	if err != nil {
		return errors.Wrap(err, "unable to encode message")
	}
	wCtx, cancel := context.WithTimeout(ctx, kp.cfg.Timeout)
	defer cancel()
	if err := kp.writer.WriteMessages(wCtx, kafka.Message{Key: []byte(channel), Value: value}); err != nil {
		log.Error("Unable to publish to kafka", "topic", kp.cfg.Topic, "channel", channel, "error", err)
		return errors.Wrap(err, "unable to publish to kafka")
	}
	log.Debug("Message published to kafka", "topic", kp.cfg.Topic, "channel", channel)
	return nil
}

// Close flushes and closes the underlying writer
func (kp *KafkaPublisher) Close() error {
	return kp.writer.Close()
}
