/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os/signal"
	"syscall"

	"github.com/jobportal/apiserver/config"
	"github.com/jobportal/apiserver/internal/logging"
	"github.com/jobportal/apiserver/internal/mq"
	"github.com/jobportal/apiserver/internal/notify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// eventsCmd represents the events command.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Consume application lifecycle events",
	Long: `Consumes application lifecycle events from the configured broker
and logs them. Runs until interrupted. Usage:

	apiserver events
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		logger, err := logging.New()
		if err != nil {
			return err
		}
		defer func() {
			_ = logger.Sync()
		}()

		broker, err := mq.NewFromConfig(cmd.Context(), cfg.MQ)
		if err != nil {
			return err
		}
		if broker == nil {
			return errors.New("MQ_BACKEND is not configured")
		}
		defer func() {
			_ = broker.Close()
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		err = broker.Subscribe(ctx, notify.EventChannel, func(ctx context.Context, msg mq.Message) error {
			var event notify.ApplicationEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				logger.Warn("discarding malformed application event",
					zap.String("message_id", msg.ID),
					zap.Error(err),
				)
				return nil
			}
			logger.Info("application event",
				zap.String("kind", event.Kind),
				zap.Int("application_id", event.ApplicationID),
				zap.Int("job_id", event.JobID),
				zap.Int("candidate_id", event.CandidateID),
				zap.Int("company_id", event.CompanyID),
				zap.String("status", string(event.Status)),
			)
			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
