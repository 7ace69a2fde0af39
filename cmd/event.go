package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/training-management/internal/core/events"
	"github.com/frahmantamala/training-management/pkg/logger"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus debugging commands",
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a debug event on a throwaway bus",
	Long: `Publish a debug event and echo it through a local subscriber. Known
workflow event types: ` + events.EventTypeProposalStatusChanged + `, ` +
		events.EventTypeProposalImplemented + `, ` +
		events.EventTypeDraftSubmitted + `, ` +
		events.EventTypeNotificationCreated + `.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishDebugEvent(args[0])
	},
}

var eventData string

func publishDebugEvent(eventType string) {
	appLogger := logger.LoggerWrapper()
	bus := events.NewEventBus(appLogger)

	bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		appLogger.Info("debug subscriber received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	ev := events.BaseEvent{
		ID:        fmt.Sprintf("debug-%d", time.Now().Unix()),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      map[string]interface{}{"message": eventData},
	}

	if err := bus.Publish(context.Background(), ev); err != nil {
		appLogger.Error("failed to publish debug event", "error", err)
		return
	}

	// async dispatch; give the subscriber a moment before exit
	time.Sleep(100 * time.Millisecond)
	appLogger.Info("debug event delivered", "event_type", eventType, "event_id", ev.ID)
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "hello", "payload message")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
