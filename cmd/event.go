package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/frahmantamala/erp-rbac/internal/core/events"
	"github.com/frahmantamala/erp-rbac/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish role events on an in-process bus to check subscribers and audit output`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a role event",
	Long:  "Publish a role event. Valid types: " + strings.Join(events.RoleEventTypes, ", "),
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishRoleEvent(cmd.Context(), args[0])
	},
}

var (
	eventRoleID   int64
	eventRoleName string
)

func publishRoleEvent(ctx context.Context, eventType string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.LoggerWrapper()

	event, ok := events.NewRoleEvent(eventType, eventRoleID, eventRoleName)
	if !ok {
		return fmt.Errorf("unknown event type %q, expected one of %s", eventType, strings.Join(events.RoleEventTypes, ", "))
	}

	bus := events.NewEventBus(log)
	bus.Subscribe(eventType, func(ctx context.Context, e events.Event) error {
		log.InfoContext(ctx, "handler received event",
			"event_id", e.EventID(),
			"event_type", e.EventType(),
			"payload", e.Payload())
		return nil
	})

	log.Info("publishing event", "event_type", eventType, "event_id", event.EventID())

	// synchronous so the handler output is written before the command exits
	if err := bus.PublishSync(ctx, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Info("event published")
	return nil
}

func init() {
	publishEventCmd.Flags().Int64Var(&eventRoleID, "role-id", 1, "role id carried by the event")
	publishEventCmd.Flags().StringVar(&eventRoleName, "name", "test role", "role name carried by the event")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
