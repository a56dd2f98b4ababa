package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/cache"
	"github.com/stockroom-app/stockroom/internal/config"
	"github.com/stockroom-app/stockroom/internal/entity"
	"github.com/stockroom-app/stockroom/internal/normalizer"
	repo "github.com/stockroom-app/stockroom/internal/repository/catalog"
	"github.com/stockroom-app/stockroom/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/stockroom-app/stockroom/service/catalog")

const listCacheKey = "catalog:items"

// Service encapsulates business logic around the item catalog. Caching is
// caller-controlled: every mutation invalidates the cached list, and the
// presentation layer decides when a fresh read happens.
type Service struct {
	store    *repo.Store
	cache    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store  *repo.Store
	Cache  cache.Store
	Config config.Config
	Logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		store:    p.Store,
		cache:    p.Cache,
		cacheTTL: p.Config.Cache.DefaultTTL,
		logger:   p.Logger,
	}
}

// Ingest normalizes a raw wide table and replaces the catalog with the
// result. When no name/product-number pairs are detected the catalog is
// left untouched and an unprocessable error is returned.
func (s *Service) Ingest(ctx context.Context, table [][]string) (int, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Ingest", trace.WithAttributes(attribute.Int("ingest.rows", len(table))))
	defer span.End()

	items, err := normalizer.Normalize(table)
	if err != nil {
		if errors.Is(err, normalizer.ErrNoColumnPairs) {
			return 0, errorbank.Unprocessable("could not detect item and product-number columns", errorbank.WithCause(err))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "normalize failed")
		return 0, errorbank.Unprocessable("could not normalize upload", errorbank.WithCause(err))
	}

	if err := s.store.Write(ctx, items); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		return 0, errorbank.Internal("failed to save catalog", errorbank.WithCause(err))
	}

	s.Invalidate(ctx)
	s.logger.Info("catalog replaced from upload", zap.Int("items", len(items)))
	return len(items), nil
}

// List returns the catalog, optionally filtered by a case-insensitive
// substring match on item names. The unfiltered list is served from cache
// when available.
func (s *Service) List(ctx context.Context, search string) []entity.CatalogItem {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.List")
	defer span.End()

	items, ok := s.listFromCache(ctx)
	if !ok {
		items = s.store.Read(ctx)
		s.storeInCache(ctx, items)
	}

	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return items
	}
	filtered := make([]entity.CatalogItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Item), search) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Upsert inserts or overwrites one catalog row.
func (s *Service) Upsert(ctx context.Context, item entity.CatalogItem) error {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Upsert")
	defer span.End()

	if err := s.store.Upsert(ctx, item); err != nil {
		span.RecordError(err)
		return errorbank.Internal("failed to save catalog item", errorbank.WithCause(err))
	}
	s.Invalidate(ctx)
	return nil
}

// Remove deletes catalog rows by item name.
func (s *Service) Remove(ctx context.Context, names []string) error {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Remove", trace.WithAttributes(attribute.Int("catalog.removals", len(names))))
	defer span.End()

	if err := s.store.Remove(ctx, names); err != nil {
		span.RecordError(err)
		return errorbank.Internal("failed to remove catalog items", errorbank.WithCause(err))
	}
	s.Invalidate(ctx)
	return nil
}

// Decrement reduces stock for one item, clamped at zero.
func (s *Service) Decrement(ctx context.Context, key entity.ItemKey, qty int) error {
	if err := s.store.Decrement(ctx, key, qty); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

// Invalidate drops the cached catalog list.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, listCacheKey); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}

func (s *Service) listFromCache(ctx context.Context) ([]entity.CatalogItem, bool) {
	if s.cache == nil {
		return nil, false
	}
	bytes, err := s.cache.Get(ctx, listCacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("catalog cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var items []entity.CatalogItem
	if err := json.Unmarshal(bytes, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (s *Service) storeInCache(ctx context.Context, items []entity.CatalogItem) {
	if s.cache == nil {
		return
	}
	bytes, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, listCacheKey, bytes, s.cacheTTL); err != nil {
		s.logger.Warn("catalog cache write failed", zap.Error(err))
	}
}
