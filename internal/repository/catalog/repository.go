// Package catalog persists the canonical item table in a single CSV file.
//
// Reads favor availability: a missing or corrupt file degrades to an empty
// catalog, and malformed cells are coerced to documented defaults. Writes
// must never fail silently and always re-coerce rows so invariants hold
// even for unconstrained caller edits.
package catalog

import (
	"context"
	"sort"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/entity"
	"github.com/stockroom-app/stockroom/internal/storage"
)

var repoTracer = otel.Tracer("github.com/stockroom-app/stockroom/repository/catalog")

// Header is the persisted catalog column layout.
var Header = []string{"item", "product_number", "current_qty", "sort_order"}

// Store owns the catalog file.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore wires a catalog store over the configured data file.
func NewStore(files *storage.Files, logger *zap.Logger) *Store {
	return &Store{path: files.Catalog, logger: logger}
}

// Read returns the full catalog ordered by sort order, ties broken by item
// name. A missing or unparsable file yields an empty catalog.
func (s *Store) Read(ctx context.Context) []entity.CatalogItem {
	_, span := repoTracer.Start(ctx, "CatalogStore.Read")
	defer span.End()

	table, err := storage.ReadTable(s.path)
	if err != nil {
		s.logger.Warn("catalog unreadable; treating as empty", zap.String("path", s.path), zap.Error(err))
		return nil
	}
	if len(table) == 0 {
		return nil
	}

	cols := columnIndex(table[0])
	items := make([]entity.CatalogItem, 0, len(table)-1)
	for pos, row := range table[1:] {
		item := coerce(entity.CatalogItem{
			Item:          field(row, cols["item"]),
			ProductNumber: field(row, cols["product_number"]),
			CurrentQty:    atoiOr(field(row, cols["current_qty"]), 0),
			SortOrder:     atoiOr(field(row, cols["sort_order"]), pos),
		})
		if item.Item == "" || item.ProductNumber == "" {
			continue
		}
		items = append(items, item)
	}

	sortItems(items)
	span.SetAttributes(attribute.Int("catalog.items", len(items)))
	return items
}

// Write persists the full table, overwriting previous content. Rows are
// re-coerced and deduplicated on (item, product number) keeping the last
// occurrence.
func (s *Store) Write(ctx context.Context, items []entity.CatalogItem) error {
	_, span := repoTracer.Start(ctx, "CatalogStore.Write", trace.WithAttributes(attribute.Int("catalog.items", len(items))))
	defer span.End()

	clean := sanitize(items)
	rows := make([][]string, 0, len(clean))
	for _, item := range clean {
		rows = append(rows, []string{
			item.Item,
			item.ProductNumber,
			strconv.Itoa(item.CurrentQty),
			strconv.Itoa(item.SortOrder),
		})
	}

	if err := storage.WriteTable(s.path, Header, rows); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		return err
	}
	return nil
}

// Upsert inserts the item or overwrites the row matching its key.
func (s *Store) Upsert(ctx context.Context, item entity.CatalogItem) error {
	ctx, span := repoTracer.Start(ctx, "CatalogStore.Upsert", trace.WithAttributes(attribute.String("catalog.item", item.Item)))
	defer span.End()

	items := s.Read(ctx)
	items = append(items, item)
	return s.Write(ctx, items)
}

// Remove filters out items matching any of the given names.
func (s *Store) Remove(ctx context.Context, names []string) error {
	ctx, span := repoTracer.Start(ctx, "CatalogStore.Remove", trace.WithAttributes(attribute.Int("catalog.removals", len(names))))
	defer span.End()

	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		drop[entity.NormalizeItemName(name)] = struct{}{}
	}

	items := s.Read(ctx)
	kept := items[:0]
	for _, item := range items {
		if _, ok := drop[item.Item]; !ok {
			kept = append(kept, item)
		}
	}
	return s.Write(ctx, kept)
}

// Decrement reduces current stock of the item matching the key, clamped at
// zero. Unknown keys are a no-op.
func (s *Store) Decrement(ctx context.Context, key entity.ItemKey, qty int) error {
	ctx, span := repoTracer.Start(ctx, "CatalogStore.Decrement", trace.WithAttributes(
		attribute.String("catalog.item", key.Item),
		attribute.Int("catalog.qty", qty),
	))
	defer span.End()

	if qty <= 0 {
		return nil
	}

	items := s.Read(ctx)
	found := false
	for i := range items {
		if items[i].Key() == key {
			items[i].CurrentQty -= qty
			if items[i].CurrentQty < 0 {
				items[i].CurrentQty = 0
			}
			found = true
		}
	}
	if !found {
		return nil
	}
	return s.Write(ctx, items)
}

// coerce enforces the row schema: normalized name, canonical product
// number, non-negative quantities.
func coerce(item entity.CatalogItem) entity.CatalogItem {
	item.Item = entity.NormalizeItemName(item.Item)
	item.ProductNumber = entity.CanonicalProductNumber(item.ProductNumber)
	if item.CurrentQty < 0 {
		item.CurrentQty = 0
	}
	if item.SortOrder < 0 {
		item.SortOrder = 0
	}
	return item
}

// sanitize coerces every row, drops invalid ones, and keeps the last
// occurrence of each (item, product number) key.
func sanitize(items []entity.CatalogItem) []entity.CatalogItem {
	latest := make(map[entity.ItemKey]int, len(items))
	clean := make([]entity.CatalogItem, 0, len(items))
	for _, raw := range items {
		item := coerce(raw)
		if item.Item == "" || item.ProductNumber == "" {
			continue
		}
		if at, ok := latest[item.Key()]; ok {
			clean[at] = item
			continue
		}
		latest[item.Key()] = len(clean)
		clean = append(clean, item)
	}
	sortItems(clean)
	return clean
}

func sortItems(items []entity.CatalogItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].SortOrder != items[j].SortOrder {
			return items[i].SortOrder < items[j].SortOrder
		}
		return items[i].Item < items[j].Item
	})
}

// columnIndex maps the known schema columns to their position in the file
// header; absent columns map to -1 so their fields fall back to defaults.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(Header))
	for _, name := range Header {
		cols[name] = -1
	}
	for i, name := range header {
		cols[name] = i
	}
	return cols
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func atoiOr(s string, fallback int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return fallback
}
