package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/benvon/mood-poll/internal/queue"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewActivityCmd creates the activity command
func NewActivityCmd() *cobra.Command {
	var amqpURL, exchange string
	var count int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Print poll activity published to RabbitMQ",
		Long:  "Bind a private queue to the activity exchange and print every vote, toggle and reset as a JSON line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if amqpURL == "" {
				return fmt.Errorf("--amqp is required")
			}

			log, err := commandLogger(cmd)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			mq, err := queue.NewRabbitMQ(amqpURL, exchange)
			if err != nil {
				return err
			}
			defer func() {
				if err := mq.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close RabbitMQ connection: %v\n", err)
				}
			}()

			events, errs, err := mq.Subscribe(cmd.Context())
			if err != nil {
				return err
			}
			log.Info("activity_subscribed", zap.String("exchange", exchange))

			enc := json.NewEncoder(cmd.OutOrStdout())
			for seen := 0; count <= 0 || seen < count; {
				select {
				case ev, ok := <-events:
					if !ok {
						return nil
					}
					if err := enc.Encode(ev); err != nil {
						return fmt.Errorf("failed to write event: %w", err)
					}
					seen++
				case err, ok := <-errs:
					if !ok {
						return nil
					}
					log.Warn("activity_delivery_error", zap.Error(err))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&amqpURL, "amqp", os.Getenv("RABBITMQ_URL"), "RabbitMQ URL (env RABBITMQ_URL)")
	cmd.Flags().StringVar(&exchange, "exchange", queue.DefaultExchangeName, "Activity exchange name")
	cmd.Flags().IntVar(&count, "count", 0, "Stop after this many events (0 = until interrupted)")
	return cmd
}
