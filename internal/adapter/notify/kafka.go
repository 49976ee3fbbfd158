package notify

import (
	"context"
	"encoding/json"
	"time"

	"loan-backoffice/internal/domain/notification"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSender publishes notification requests for a downstream mailer.
type KafkaSender struct {
	writer messageWriter
	topic  string
}

func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

func NewKafkaSender(writer messageWriter, topic string) *KafkaSender {
	return &KafkaSender{writer: writer, topic: topic}
}

type kafkaEnvelope struct {
	notification.Message
	EmittedAt time.Time `json:"emitted_at"`
}

func (k *KafkaSender) Send(ctx context.Context, m notification.Message) error {
	payload, err := json.Marshal(kafkaEnvelope{Message: m, EmittedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Topic: k.topic,
		Key:   []byte(m.To),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(m.Kind)},
		},
	})
}
