package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/IgorGrieder/shortlink/internal/events"
	"github.com/spf13/cobra"
)

var errKafkaDisabled = errors.New("KAFKA_BROKERS is not set")

func newWatchCmd() *cobra.Command {
	var groupID string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print link created events as they are published",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Kafka.Enabled() {
				return errKafkaDisabled
			}
			if groupID == "" {
				groupID = cfg.Kafka.GroupID
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			consumer := events.NewKafkaConsumer(events.ConsumerOptions{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.Topic,
				GroupID: groupID,
			}, func(_ context.Context, ev events.LinkCreated) error {
				return enc.Encode(ev)
			})
			defer consumer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s\n", cfg.Kafka.Topic)
			return consumer.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&groupID, "group", "", "consumer group, overrides KAFKA_LINK_GROUP_ID")
	return cmd
}
