// Package kafka publishes job notifications to a Kafka-compatible broker.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

// Producer is the subset of *kgo.Client used here.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Publisher produces JSON records keyed by job id.
type Publisher struct {
	producer     Producer
	defaultTopic string
}

// Dial connects a franz-go client to brokers.
func Dial(brokers []string, defaultTopic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker address is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.ClientID("style-guide-generator"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka client: %w", err)
	}
	return New(client, defaultTopic), nil
}

// New wraps an existing producer.
func New(producer Producer, defaultTopic string) *Publisher {
	return &Publisher{producer: producer, defaultTopic: defaultTopic}
}

// Publish produces payload synchronously and returns "<topic>/<partition>@<offset>".
func (p *Publisher) Publish(ctx context.Context, topic string, payload any) (string, error) {
	if topic == "" {
		topic = p.defaultTopic
	}
	if topic == "" {
		return "", fmt.Errorf("kafka topic is not configured")
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	record := &kgo.Record{Topic: topic, Key: recordKey(payload), Value: value}
	carrier := headerCarrier{record: record}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	produced, err := p.producer.ProduceSync(ctx, record).First()
	if err != nil {
		return "", fmt.Errorf("failed to produce message: %w", err)
	}
	return fmt.Sprintf("%s/%d@%d", produced.Topic, produced.Partition, produced.Offset), nil
}

// Close flushes and closes the producer.
func (p *Publisher) Close() {
	p.producer.Close()
}

func recordKey(payload any) []byte {
	switch ev := payload.(type) {
	case styleguide.JobEvent:
		return []byte(ev.JobID)
	case *styleguide.JobEvent:
		return []byte(ev.JobID)
	}
	return nil
}

// headerCarrier implements propagation.TextMapCarrier over record headers.
type headerCarrier struct {
	record *kgo.Record
}

func (c headerCarrier) Get(key string) string {
	for _, h := range c.record.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c headerCarrier) Set(key, value string) {
	for i, h := range c.record.Headers {
		if h.Key == key {
			c.record.Headers[i].Value = []byte(value)
			return
		}
	}
	c.record.Headers = append(c.record.Headers, kgo.RecordHeader{Key: key, Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.record.Headers))
	for _, h := range c.record.Headers {
		keys = append(keys, h.Key)
	}
	return keys
}
