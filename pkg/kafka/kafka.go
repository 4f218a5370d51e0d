package kafka

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

const (
	BorrowingTopic = "library.borrowings"

	AuditConsumerGroup = "library-audit"
)

type Config struct {
	Addrs  []string `envconfig:"KAFKA_ADDRS" default:"localhost:9092"`
	Enable bool     `envconfig:"KAFKA_ENABLE" default:"false"`
}

type EventType string

const (
	EventBorrowed EventType = "BORROWED"
	EventReturned EventType = "RETURNED"
	EventLost     EventType = "LOST"
)

type BorrowingEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	UserID      string    `json:"userId"`
	BookID      string    `json:"bookId"`
	BorrowingID string    `json:"borrowingId"`
	EventType   EventType `json:"eventType"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Retry.Max = 3
	defaultCfg.Producer.Timeout = 5 * time.Second

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

func NewConsumer(cfg Config, group string) (sarama.ConsumerGroup, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	defaultCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}

	return sarama.NewConsumerGroup(cfg.Addrs, group, defaultCfg)
}

// Consume rejoins the group after every rebalance until ctx is done.
func Consume(ctx context.Context, group sarama.ConsumerGroup, handler sarama.ConsumerGroupHandler, topics ...string) error {
	for {
		if err := group.Consume(ctx, topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return errors.Wrap(err, "consume")
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}
