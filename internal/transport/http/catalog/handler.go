package catalog

import (
	"encoding/csv"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stockroom-app/stockroom/internal/dto"
	"github.com/stockroom-app/stockroom/internal/presentation/http/response"
	catalogsvc "github.com/stockroom-app/stockroom/internal/service/catalog"
	ordersvc "github.com/stockroom-app/stockroom/internal/service/order"
	"github.com/stockroom-app/stockroom/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/stockroom-app/stockroom/transport/http/catalog")

// Handler exposes catalog endpoints over HTTP.
type Handler struct {
	catalog *catalogsvc.Service
	orders  *ordersvc.Service
}

// NewHandler constructs a catalog Handler.
func NewHandler(catalog *catalogsvc.Service, orders *ordersvc.Service) *Handler {
	return &Handler{catalog: catalog, orders: orders}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/catalog")
	g.GET("", h.list)
	g.POST("/ingest", h.ingest)
	g.DELETE("/items", h.remove)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	search := c.QueryParam("search")
	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.list", trace.WithAttributes(attribute.String("catalog.search", search)))
	defer span.End()

	items := h.catalog.List(ctx, search)
	lastOrdered := h.orders.LastOrdered(ctx)

	payload := make([]dto.CatalogItemResponse, 0, len(items))
	for _, item := range items {
		row := dto.CatalogItemResponse{
			Item:          item.Item,
			ProductNumber: item.ProductNumber,
			CurrentQty:    item.CurrentQty,
			SortOrder:     item.SortOrder,
		}
		if info, ok := lastOrdered[item.Key()]; ok {
			row.LastOrderedAt = info.LastOrderedAt
			row.LastQty = info.LastQty
		}
		payload = append(payload, row)
	}

	return b.WithData(payload).Build()
}

// ingest accepts a raw wide CSV export as the request body. The first row
// is treated as the export's header and discarded; the remaining rows feed
// column detection.
func (h *Handler) ingest(c echo.Context) error {
	b := response.New(c)

	reader := csv.NewReader(c.Request().Body)
	reader.FieldsPerRecord = -1
	table, err := reader.ReadAll()
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid CSV upload", errorbank.WithCause(err))).Build()
	}
	if len(table) > 0 {
		table = table[1:]
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.ingest", trace.WithAttributes(attribute.Int("ingest.rows", len(table))))
	defer span.End()

	count, err := h.catalog.Ingest(ctx, table)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.IngestResponse{Items: count}).Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		Items []string `json:"items"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if len(payload.Items) == 0 {
		return b.WithError(errorbank.BadRequest("items are required")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.remove", trace.WithAttributes(attribute.Int("catalog.removals", len(payload.Items))))
	defer span.End()

	if err := h.catalog.Remove(ctx, payload.Items); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(struct {
		Removed []string `json:"removed"`
	}{Removed: payload.Items}).Build()
}
