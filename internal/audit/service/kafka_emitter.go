package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	auditDomain "github.com/allisson/keyvault/internal/audit/domain"
	apperrors "github.com/allisson/keyvault/internal/errors"
)

// kafkaWriter is the subset of kafka.Writer the emitter uses, extracted so
// tests can substitute the transport.
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEmitter publishes audit records to a Kafka topic as JSON messages.
type KafkaEmitter struct {
	writer kafkaWriter
	logger *slog.Logger
}

// Emit serializes the record and publishes it. The caller decides whether a
// publish failure fails the audited operation.
func (k *KafkaEmitter) Emit(ctx context.Context, record *auditDomain.AuditRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit record")
	}

	if err := k.writer.WriteMessages(ctx, kafka.Message{Value: payload}); err != nil {
		k.logger.Error("failed to publish audit record",
			slog.String("operation", record.Operation),
			slog.String("key_id", record.KeyID),
			slog.Any("error", err),
		)
		return apperrors.Wrap(err, "failed to publish audit record")
	}

	return nil
}

// Close flushes pending messages and closes the underlying writer.
func (k *KafkaEmitter) Close() error {
	return k.writer.Close()
}

// NewKafkaEmitter creates a Kafka emitter writing to the given brokers and
// topic, balancing messages across partitions with LeastBytes. Emission is
// synchronous in the request path, so batches flush after 10ms instead of
// the writer's one-second default.
func NewKafkaEmitter(brokers []string, topic string, logger *slog.Logger) *KafkaEmitter {
	if logger == nil {
		logger = slog.Default()
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}

	return &KafkaEmitter{writer: writer, logger: logger}
}
