package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Astemirdum/library-borrowing/pkg/kafka"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEventLog_Publish(t *testing.T) {
	t.Parallel()
	ev := kafka.BorrowingEvent{
		Timestamp:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		UserID:      "u1",
		BookID:      "b1",
		BorrowingID: "br1",
		EventType:   kafka.EventBorrowed,
	}

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != kafka.BorrowingTopic {
			return errors.Errorf("unexpected topic %s", msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "b1" {
			return errors.Errorf("unexpected key %s", key)
		}
		return nil
	})
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got kafka.BorrowingEvent
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.EventType != kafka.EventReturned || got.BorrowingID != "br1" {
			return errors.Errorf("unexpected event %s", val)
		}
		return nil
	})

	l := kafka.NewEventLog(producer, zap.NewNop())
	require.NoError(t, l.Publish(context.Background(), ev))

	ev.EventType = kafka.EventReturned
	require.NoError(t, l.Publish(context.Background(), ev))
	require.NoError(t, l.Close())
}

func TestEventLog_PublishFailure(t *testing.T) {
	t.Parallel()
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	l := kafka.NewEventLog(producer, zap.NewNop())
	err := l.Publish(context.Background(), kafka.BorrowingEvent{BookID: "b1", EventType: kafka.EventLost})
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, l.Close())
}

func TestNoopEventLog(t *testing.T) {
	t.Parallel()
	l := kafka.NewNoopEventLog()
	require.NoError(t, l.Publish(context.Background(), kafka.BorrowingEvent{}))
	require.NoError(t, l.Close())
}
