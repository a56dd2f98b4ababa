package http

import (
	"go.uber.org/fx"

	catalogtransport "github.com/stockroom-app/stockroom/internal/transport/http/catalog"
	orderstransport "github.com/stockroom-app/stockroom/internal/transport/http/orders"
	peopletransport "github.com/stockroom-app/stockroom/internal/transport/http/people"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	catalogtransport.Module,
	orderstransport.Module,
	peopletransport.Module,
)
