package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/config"
	"github.com/stockroom-app/stockroom/internal/entity"
	"github.com/stockroom-app/stockroom/internal/messaging"
	"github.com/stockroom-app/stockroom/internal/repository/orderlog"
	catalogsvc "github.com/stockroom-app/stockroom/internal/service/catalog"
	"github.com/stockroom-app/stockroom/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/stockroom-app/stockroom/service/order")

// Validation errors returned by Build. No side effects occur when either is
// returned.
var (
	ErrEmptyOrder = errorbank.BadRequest("no quantities selected", errorbank.WithDetail("reason", "empty_order"))
	ErrNoOrderer  = errorbank.BadRequest("orderer is required", errorbank.WithDetail("reason", "no_orderer"))
)

// Service owns the order lifecycle: building a batch from user quantity
// selections, committing it, and serving history views.
type Service struct {
	catalog   *catalogsvc.Service
	log       *orderlog.Log
	snapshot  *orderlog.Snapshot
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
	now       func() time.Time
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Catalog   *catalogsvc.Service
	Log       *orderlog.Log
	Snapshot  *orderlog.Snapshot
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		catalog:   p.Catalog,
		log:       p.Log,
		snapshot:  p.Snapshot,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
		now: time.Now,
	}
}

// Build validates the user's quantity selections into a committable batch.
// Quantities are keyed by (item, product number); keys are canonicalized
// before comparison so numeric and string product numbers match. Lines come
// out in catalog order.
func (s *Service) Build(ctx context.Context, quantities map[entity.ItemKey]int, orderer string) (entity.OrderBatch, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Build", trace.WithAttributes(attribute.Int("order.selections", len(quantities))))
	defer span.End()

	orderer = entity.NormalizeItemName(orderer)
	if orderer == "" {
		return entity.OrderBatch{}, ErrNoOrderer
	}

	wanted := make(map[entity.ItemKey]int, len(quantities))
	for key, qty := range quantities {
		canonical := entity.ItemKey{
			Item:          entity.NormalizeItemName(key.Item),
			ProductNumber: entity.CanonicalProductNumber(key.ProductNumber),
		}
		wanted[canonical] = qty
	}

	var lines []entity.OrderLine
	for _, item := range s.catalog.List(ctx, "") {
		qty := wanted[item.Key()]
		if qty <= 0 {
			continue
		}
		lines = append(lines, entity.OrderLine{
			Item:          item.Item,
			ProductNumber: item.ProductNumber,
			Qty:           qty,
		})
	}
	if len(lines) == 0 {
		return entity.OrderBatch{}, ErrEmptyOrder
	}

	return entity.OrderBatch{
		ID:          uuid.NewString(),
		Lines:       lines,
		GeneratedAt: s.now().Format(entity.TimeLayout),
		Orderer:     orderer,
	}, nil
}

// Commit persists the batch: snapshot first, then the log append, then the
// optional stock decrement. The log append is attempted even when the
// snapshot write fails, and the decrement runs per line so a partial stock
// update never loses the order record. Any persistence failure propagates.
func (s *Service) Commit(ctx context.Context, batch entity.OrderBatch, decrementStock bool) error {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Commit", trace.WithAttributes(
		attribute.Int("order.lines", len(batch.Lines)),
		attribute.Bool("order.decrement", decrementStock),
	))
	defer span.End()

	if batch.Empty() {
		return ErrEmptyOrder
	}
	if batch.Orderer == "" {
		return ErrNoOrderer
	}

	at := s.now()
	if t, err := time.Parse(entity.TimeLayout, batch.GeneratedAt); err == nil {
		at = t
	} else {
		batch.GeneratedAt = at.Format(entity.TimeLayout)
	}

	snapErr := s.snapshot.Write(ctx, batch)
	if snapErr != nil {
		s.logger.Error("last order snapshot write failed", zap.Error(snapErr))
	}

	if err := s.log.Append(ctx, batch.Lines, batch.Orderer, at); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "log append failed")
		return errorbank.Internal("failed to record order", errorbank.WithCause(err))
	}

	var decrementErr error
	if decrementStock {
		for _, line := range batch.Lines {
			key := entity.ItemKey{Item: line.Item, ProductNumber: line.ProductNumber}
			if err := s.catalog.Decrement(ctx, key, line.Qty); err != nil {
				s.logger.Error("stock decrement failed",
					zap.String("item", line.Item),
					zap.String("product_number", line.ProductNumber),
					zap.Error(err),
				)
				if decrementErr == nil {
					decrementErr = err
				}
			}
		}
	}

	s.publishOrderPlaced(ctx, batch)

	if snapErr != nil {
		return errorbank.Internal("order recorded but snapshot not saved", errorbank.WithCause(snapErr))
	}
	if decrementErr != nil {
		return errorbank.Internal("order recorded but stock update incomplete", errorbank.WithCause(decrementErr))
	}

	s.logger.Info("order committed",
		zap.String("batch_id", batch.ID),
		zap.String("orderer", batch.Orderer),
		zap.Int("lines", len(batch.Lines)),
	)
	return nil
}

func (s *Service) publishOrderPlaced(ctx context.Context, batch entity.OrderBatch) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := OrderPlacedEvent{
		ID:          batch.ID,
		Orderer:     batch.Orderer,
		GeneratedAt: batch.GeneratedAt,
		Lines:       batch.Lines,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order placed", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte("order-"+batch.ID), payload); err != nil {
		s.logger.Error("publish order placed", zap.Error(err))
	}
}

// OrderPlacedEvent is emitted after a batch is committed. Notification
// delivery rides this event; the order does not depend on it.
type OrderPlacedEvent struct {
	ID          string             `json:"id"`
	Orderer     string             `json:"orderer"`
	GeneratedAt string             `json:"generated_at"`
	Lines       []entity.OrderLine `json:"lines"`
}

// Batch reconstructs the order batch carried by the event.
func (e OrderPlacedEvent) Batch() entity.OrderBatch {
	return entity.OrderBatch{
		ID:          e.ID,
		Orderer:     e.Orderer,
		GeneratedAt: e.GeneratedAt,
		Lines:       e.Lines,
	}
}
