package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"fooddelivery/internal/app/tracking"
	"fooddelivery/internal/domain"
	"fooddelivery/internal/domain/event"
	kafka_infra "fooddelivery/internal/infrastructure/kafka"
)

// LocationUpdateMessageHandler feeds courier pings into order tracking.
// Messages that can never succeed (malformed, out of range, unknown order)
// are logged and acknowledged; infrastructure failures are returned so the
// message is redelivered.
func LocationUpdateMessageHandler(trackingService tracking.TrackingService, logger *zap.Logger) kafka_infra.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var evt event.CourierLocationUpdatedEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.Error("Failed to unmarshal courier location event",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
			return nil
		}
		if evt.EventID == "" || evt.OrderID == "" {
			logger.Warn("Courier location event without event_id or order_id, skipping",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
			)
			return nil
		}

		err := trackingService.ProcessLocationEvent(ctx, evt, msg.Topic, msg.Value)
		switch {
		case err == nil:
			logger.Debug("Courier location recorded", zap.String("order_id", evt.OrderID), zap.String("event_id", evt.EventID))
			return nil
		case errors.Is(err, domain.ErrInvalidLocation), errors.Is(err, domain.ErrTrackingNotFound):
			logger.Warn("Discarding courier location event",
				zap.String("order_id", evt.OrderID),
				zap.String("event_id", evt.EventID),
				zap.Error(err),
			)
			return nil
		default:
			return fmt.Errorf("failed to process location event %s for order %s: %w", evt.EventID, evt.OrderID, err)
		}
	}
}
