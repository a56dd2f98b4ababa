package app

import (
	"go.uber.org/fx"

	"github.com/stockroom-app/stockroom/internal/cache"
	"github.com/stockroom-app/stockroom/internal/config"
	"github.com/stockroom-app/stockroom/internal/logger"
	"github.com/stockroom-app/stockroom/internal/messaging"
	"github.com/stockroom-app/stockroom/internal/notifier"
	"github.com/stockroom-app/stockroom/internal/observability"
	repositorycatalog "github.com/stockroom-app/stockroom/internal/repository/catalog"
	repositoryorderlog "github.com/stockroom-app/stockroom/internal/repository/orderlog"
	repositorypeople "github.com/stockroom-app/stockroom/internal/repository/people"
	httpserver "github.com/stockroom-app/stockroom/internal/server/http"
	servicecatalog "github.com/stockroom-app/stockroom/internal/service/catalog"
	serviceorder "github.com/stockroom-app/stockroom/internal/service/order"
	"github.com/stockroom-app/stockroom/internal/storage"
	transporthttp "github.com/stockroom-app/stockroom/internal/transport/http"
	"github.com/stockroom-app/stockroom/internal/worker"
	workerorder "github.com/stockroom-app/stockroom/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	logger.Module,
	cache.Module,
	storage.Module,
	messaging.Module,
	notifier.Module,
	observability.Module,
	repositorycatalog.Module,
	repositoryorderlog.Module,
	repositorypeople.Module,
	servicecatalog.Module,
	serviceorder.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
)

// Worker exposes background notification processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
