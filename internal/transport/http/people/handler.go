package people

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/stockroom-app/stockroom/internal/presentation/http/response"
	peoplerepo "github.com/stockroom-app/stockroom/internal/repository/people"
)

// Handler exposes the orderer list over HTTP.
type Handler struct {
	store *peoplerepo.Store
}

// NewHandler constructs a people Handler.
func NewHandler(store *peoplerepo.Store) *Handler {
	return &Handler{store: store}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/people", h.list)
}

func (h *Handler) list(c echo.Context) error {
	names := h.store.Read(c.Request().Context())
	return response.New(c).WithData(names).Build()
}

// Module wires the HTTP people handler.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler) {
		Register(e, h)
	}),
)
