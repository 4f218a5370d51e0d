package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type EventHandler func(ctx context.Context, ev BorrowingEvent) error

// Consumer decodes borrowing events and hands them to an EventHandler.
type Consumer struct {
	handle EventHandler
	log    *zap.Logger
}

func NewEventConsumer(handle EventHandler, log *zap.Logger) *Consumer {
	return &Consumer{
		handle: handle,
		log:    log.Named("consumer"),
	}
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error { return nil }

func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				c.log.Debug("message channel was closed")
				return nil
			}
			var ev BorrowingEvent
			if err := json.Unmarshal(message.Value, &ev); err != nil {
				c.log.Error("decode event", zap.Error(err), zap.Int64("offset", message.Offset))
				session.MarkMessage(message, "")
				continue
			}
			if err := c.handle(session.Context(), ev); err != nil {
				c.log.Error("handle event", zap.Error(err), zap.String("borrowingId", ev.BorrowingID))
				continue
			}
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
