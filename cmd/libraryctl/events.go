package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Astemirdum/library-borrowing/pkg/kafka"
)

func newEventsCmd(opts *rootOptions) *cobra.Command {
	group := kafka.AuditConsumerGroup
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print borrowing lifecycle events as JSON lines until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg kafka.Config
			if err := envconfig.Process("", &cfg); err != nil {
				return errors.Wrap(err, "kafka config")
			}
			consumer, err := kafka.NewConsumer(cfg, group)
			if err != nil {
				return errors.Wrap(err, "kafka.NewConsumer")
			}
			defer consumer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			enc := json.NewEncoder(cmd.OutOrStdout())
			handler := kafka.NewEventConsumer(func(_ context.Context, ev kafka.BorrowingEvent) error {
				return enc.Encode(ev)
			}, opts.logger())
			return kafka.Consume(ctx, consumer, handler, kafka.BorrowingTopic)
		},
	}
	cmd.Flags().StringVar(&group, "group", group, "consumer group id")
	return cmd
}
