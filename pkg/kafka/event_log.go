package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Astemirdum/library-borrowing/pkg/circuit_breaker"
	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type EventLog interface {
	Publish(ctx context.Context, ev BorrowingEvent) error
	Close() error
}

type eventLog struct {
	producer sarama.SyncProducer
	cb       circuit_breaker.CircuitBreaker
	topic    string
	log      *zap.Logger
}

func NewEventLog(producer sarama.SyncProducer, log *zap.Logger) EventLog {
	return &eventLog{
		producer: producer,
		cb:       circuit_breaker.New(20, 10*time.Second, 0.5, 3),
		topic:    BorrowingTopic,
		log:      log.Named("event_log"),
	}
}

// Publish keys messages by book so one book's history stays on one partition.
func (l *eventLog) Publish(ctx context.Context, ev BorrowingEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	msg := &sarama.ProducerMessage{
		Topic:     l.topic,
		Key:       sarama.StringEncoder(ev.BookID),
		Value:     sarama.ByteEncoder(data),
		Timestamp: ev.Timestamp,
	}
	return l.cb.Call(func() error {
		partition, offset, err := l.producer.SendMessage(msg)
		if err != nil {
			return errors.Wrap(err, "send event")
		}
		l.log.Debug("event published",
			zap.String("type", string(ev.EventType)),
			zap.String("borrowingId", ev.BorrowingID),
			zap.Int32("partition", partition),
			zap.Int64("offset", offset))
		return nil
	})
}

func (l *eventLog) Close() error {
	return l.producer.Close()
}

type noopEventLog struct{}

func NewNoopEventLog() EventLog { return noopEventLog{} }

func (noopEventLog) Publish(context.Context, BorrowingEvent) error { return nil }

func (noopEventLog) Close() error { return nil }
