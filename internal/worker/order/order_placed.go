package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/config"
	"github.com/stockroom-app/stockroom/internal/messaging"
	"github.com/stockroom-app/stockroom/internal/notifier"
	ordersvc "github.com/stockroom-app/stockroom/internal/service/order"
	"github.com/stockroom-app/stockroom/internal/worker"
)

var workerTracer = otel.Tracer("github.com/stockroom-app/stockroom/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewOrderPlacedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderPlacedHandler sets up a worker handler that delivers the order
// notification for each placed order. A delivery failure is returned so
// the message is retried; the order itself was already persisted.
func NewOrderPlacedHandler(mailer notifier.Client, logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.notify", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ordersvc.OrderPlacedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order placed", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		if err := mailer.Send(ctx, event.Batch()); err != nil {
			logger.Error("order notification delivery failed",
				zap.String("batch_id", event.ID),
				zap.Error(err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, "delivery error")
			return err
		}

		logger.Info("order notification delivered",
			zap.String("batch_id", event.ID),
			zap.String("orderer", event.Orderer),
			zap.Int("lines", len(event.Lines)),
		)

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
