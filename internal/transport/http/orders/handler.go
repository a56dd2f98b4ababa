package orders

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stockroom-app/stockroom/internal/dto"
	"github.com/stockroom-app/stockroom/internal/entity"
	"github.com/stockroom-app/stockroom/internal/presentation/http/response"
	ordersvc "github.com/stockroom-app/stockroom/internal/service/order"
	"github.com/stockroom-app/stockroom/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/stockroom-app/stockroom/transport/http/orders")

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc *ordersvc.Service
}

// NewHandler constructs an orders Handler.
func NewHandler(svc *ordersvc.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/orders")
	g.POST("", h.place)
	g.GET("/log", h.history)
	g.DELETE("/log", h.clear)
	g.GET("/last", h.lastBatch)
	g.GET("/last/export", h.exportLastBatch)
}

func (h *Handler) place(c echo.Context) error {
	b := response.New(c)

	var payload dto.PlaceOrderRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.place", trace.WithAttributes(
		attribute.String("order.orderer", payload.Orderer),
		attribute.Int("order.selections", len(payload.Lines)),
	))
	defer span.End()

	quantities := make(map[entity.ItemKey]int, len(payload.Lines))
	for _, line := range payload.Lines {
		quantities[entity.ItemKey{Item: line.Item, ProductNumber: line.ProductNumber}] = line.Qty
	}

	batch, err := h.svc.Build(ctx, quantities, payload.Orderer)
	if err != nil {
		return b.WithError(err).Build()
	}

	if err := h.svc.Commit(ctx, batch, payload.DecrementStock); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(toBatchDTO(batch, true)).Build()
}

func (h *Handler) history(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.history")
	defer span.End()

	entries := h.svc.History(ctx)
	payload := make([]dto.OrderLogEntryResponse, 0, len(entries))
	for _, entry := range entries {
		payload = append(payload, dto.OrderLogEntryResponse{
			Item:          entry.Item,
			ProductNumber: entry.ProductNumber,
			Qty:           entry.Qty,
			OrderedAt:     entry.OrderedAt,
			Orderer:       entry.Orderer,
		})
	}

	return b.WithData(payload).Build()
}

func (h *Handler) clear(c echo.Context) error {
	b := response.New(c)

	var payload dto.ClearLogRequest
	if err := c.Bind(&payload); err != nil && err != echo.ErrUnsupportedMediaType {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.clear", trace.WithAttributes(attribute.Int("order.keys", len(payload.Keys))))
	defer span.End()

	keys := make([]entity.ItemKey, 0, len(payload.Keys))
	for _, key := range payload.Keys {
		keys = append(keys, entity.ItemKey{Item: key.Item, ProductNumber: key.ProductNumber})
	}

	if err := h.svc.ClearHistory(ctx, keys); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(struct {
		Cleared string `json:"cleared"`
	}{Cleared: clearedScope(keys)}).Build()
}

func (h *Handler) lastBatch(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.lastBatch")
	defer span.End()

	batch := h.svc.LastBatch(ctx)
	if batch.Empty() {
		return b.WithError(errorbank.NotFound("no order has been generated yet")).Build()
	}

	return b.WithData(toBatchDTO(batch, true)).Build()
}

func (h *Handler) exportLastBatch(c echo.Context) error {
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.exportLastBatch")
	defer span.End()

	batch := h.svc.LastBatch(ctx)
	if batch.Empty() {
		return response.New(c).WithError(errorbank.NotFound("no order has been generated yet")).Build()
	}

	filename := fmt.Sprintf("order_%s.csv", strings.ReplaceAll(batch.GeneratedAt, ":", "-"))
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().WriteHeader(http.StatusOK)

	return ordersvc.WriteBatchCSV(c.Response(), batch)
}

func toBatchDTO(batch entity.OrderBatch, includeList bool) dto.OrderBatchResponse {
	out := dto.OrderBatchResponse{
		ID:          batch.ID,
		Orderer:     batch.Orderer,
		GeneratedAt: batch.GeneratedAt,
		Lines:       make([]dto.OrderLineResponse, 0, len(batch.Lines)),
	}
	for _, line := range batch.Lines {
		out.Lines = append(out.Lines, dto.OrderLineResponse{
			Item:          line.Item,
			ProductNumber: line.ProductNumber,
			Qty:           line.Qty,
		})
	}
	if includeList {
		out.ShoppingList = ordersvc.ShoppingList(batch)
	}
	return out
}

func clearedScope(keys []entity.ItemKey) string {
	if len(keys) == 0 {
		return "all"
	}
	return "selected"
}
