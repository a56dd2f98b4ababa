package order

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/config"
	"github.com/stockroom-app/stockroom/internal/entity"
	catalogrepo "github.com/stockroom-app/stockroom/internal/repository/catalog"
	"github.com/stockroom-app/stockroom/internal/repository/orderlog"
	catalogsvc "github.com/stockroom-app/stockroom/internal/service/catalog"
	"github.com/stockroom-app/stockroom/internal/storage"
)

var testClock = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *catalogsvc.Service) {
	t.Helper()

	dir := t.TempDir()
	files := &storage.Files{
		Dir:      dir,
		Catalog:  filepath.Join(dir, "catalog.csv"),
		OrderLog: filepath.Join(dir, "order_log.csv"),
		Snapshot: filepath.Join(dir, "last_order.csv"),
	}
	logger := zap.NewNop()

	catalog := catalogsvc.NewService(catalogsvc.Params{
		Store:  catalogrepo.NewStore(files, logger),
		Config: config.Config{},
		Logger: logger,
	})
	svc := NewService(Params{
		Catalog:  catalog,
		Log:      orderlog.NewLog(files, logger),
		Snapshot: orderlog.NewSnapshot(files, logger),
		Config:   config.Config{},
		Logger:   logger,
	})
	svc.now = func() time.Time { return testClock }
	return svc, catalog
}

func seedCatalog(t *testing.T, catalog *catalogsvc.Service, items ...entity.CatalogItem) {
	t.Helper()
	for _, item := range items {
		require.NoError(t, catalog.Upsert(context.Background(), item))
	}
}

func TestBuildValidation(t *testing.T) {
	svc, catalog := newTestService(t)
	ctx := context.Background()
	seedCatalog(t, catalog, entity.CatalogItem{Item: "Gloves", ProductNumber: "1001", CurrentQty: 10})

	_, err := svc.Build(ctx, map[entity.ItemKey]int{{Item: "Gloves", ProductNumber: "1001"}: 3}, "   ")
	assert.ErrorIs(t, err, ErrNoOrderer)

	_, err = svc.Build(ctx, nil, "Alice")
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = svc.Build(ctx, map[entity.ItemKey]int{{Item: "Gloves", ProductNumber: "1001"}: 0}, "Alice")
	assert.ErrorIs(t, err, ErrEmptyOrder)

	// Selections pointing at nothing in the catalog produce no lines.
	_, err = svc.Build(ctx, map[entity.ItemKey]int{{Item: "Ghost", ProductNumber: "9999"}: 2}, "Alice")
	assert.ErrorIs(t, err, ErrEmptyOrder)

	assert.Empty(t, svc.History(ctx), "failed builds leave no trace")
}

func TestBuildCanonicalizesKeysAndOrdersByCatalog(t *testing.T) {
	svc, catalog := newTestService(t)
	ctx := context.Background()
	seedCatalog(t, catalog,
		entity.CatalogItem{Item: "Masks", ProductNumber: "1002", SortOrder: 0},
		entity.CatalogItem{Item: "Gloves", ProductNumber: "1001", SortOrder: 1},
	)

	batch, err := svc.Build(ctx, map[entity.ItemKey]int{
		{Item: " Gloves ", ProductNumber: "1001.0"}: 3,
		{Item: "Masks", ProductNumber: "1002"}:      1,
	}, "  Alice  ")
	require.NoError(t, err)

	assert.NotEmpty(t, batch.ID)
	assert.Equal(t, "Alice", batch.Orderer)
	assert.Equal(t, "2026-03-14 09:30:00", batch.GeneratedAt)
	require.Len(t, batch.Lines, 2)
	assert.Equal(t, "Masks", batch.Lines[0].Item, "lines follow catalog order")
	assert.Equal(t, "Gloves", batch.Lines[1].Item)
	assert.Equal(t, 3, batch.Lines[1].Qty)
}

func TestBuildMatchesNormalizedNameKeys(t *testing.T) {
	svc, catalog := newTestService(t)
	ctx := context.Background()
	seedCatalog(t, catalog, entity.CatalogItem{Item: "Blue Towels", ProductNumber: "1003"})

	batch, err := svc.Build(ctx, map[entity.ItemKey]int{
		{Item: "  Blue   Towels ", ProductNumber: "1003"}: 2,
	}, "Bob")
	require.NoError(t, err)
	require.Len(t, batch.Lines, 1)
	assert.Equal(t, "Blue Towels", batch.Lines[0].Item)
}

func TestCommitRecordsOrderAndDecrementsStock(t *testing.T) {
	svc, catalog := newTestService(t)
	ctx := context.Background()
	seedCatalog(t, catalog, entity.CatalogItem{Item: "Gloves", ProductNumber: "1001", CurrentQty: 10})

	batch, err := svc.Build(ctx, map[entity.ItemKey]int{{Item: "Gloves", ProductNumber: "1001"}: 3}, "Alice")
	require.NoError(t, err)
	require.NoError(t, svc.Commit(ctx, batch, true))

	history := svc.History(ctx)
	require.Len(t, history, 1)
	assert.Equal(t, entity.OrderLogEntry{
		Item:          "Gloves",
		ProductNumber: "1001",
		Qty:           3,
		OrderedAt:     "2026-03-14 09:30:00",
		Orderer:       "Alice",
	}, history[0])

	items := catalog.List(ctx, "")
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].CurrentQty)

	last := svc.LastBatch(ctx)
	assert.Equal(t, "Alice", last.Orderer)
	require.Len(t, last.Lines, 1)
	assert.Equal(t, entity.OrderLine{Item: "Gloves", ProductNumber: "1001", Qty: 3}, last.Lines[0])
}

func TestCommitWithoutDecrementLeavesStock(t *testing.T) {
	svc, catalog := newTestService(t)
	ctx := context.Background()
	seedCatalog(t, catalog, entity.CatalogItem{Item: "Gloves", ProductNumber: "1001", CurrentQty: 10})

	batch, err := svc.Build(ctx, map[entity.ItemKey]int{{Item: "Gloves", ProductNumber: "1001"}: 3}, "Alice")
	require.NoError(t, err)
	require.NoError(t, svc.Commit(ctx, batch, false))

	assert.Equal(t, 10, catalog.List(ctx, "")[0].CurrentQty)
	assert.Len(t, svc.History(ctx), 1)
}

func TestCommitValidatesBatch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.Commit(ctx, entity.OrderBatch{Orderer: "Alice"}, true)
	assert.ErrorIs(t, err, ErrEmptyOrder)

	err = svc.Commit(ctx, entity.OrderBatch{
		Lines: []entity.OrderLine{{Item: "Gloves", ProductNumber: "1001", Qty: 1}},
	}, true)
	assert.ErrorIs(t, err, ErrNoOrderer)
}

func TestCommitStampsMissingTimestamp(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Commit(ctx, entity.OrderBatch{
		Orderer:     "Alice",
		GeneratedAt: "not a timestamp",
		Lines:       []entity.OrderLine{{Item: "Gloves", ProductNumber: "1001", Qty: 2}},
	}, false))

	history := svc.History(ctx)
	require.Len(t, history, 1)
	assert.Equal(t, "2026-03-14 09:30:00", history[0].OrderedAt)
}

func TestDeriveLastOrdered(t *testing.T) {
	entries := []entity.OrderLogEntry{
		{Item: "Gloves", ProductNumber: "1001", Qty: 2, OrderedAt: "2026-03-01 08:00:00", Orderer: "Alice"},
		{Item: "Gloves", ProductNumber: "1001", Qty: 5, OrderedAt: "2026-03-10 08:00:00", Orderer: "Bob"},
		{Item: "Gloves", ProductNumber: "1001", Qty: 9, OrderedAt: "garbage", Orderer: "Eve"},
		{Item: "Masks", ProductNumber: "1002", Qty: 1, OrderedAt: "2026-03-05 08:00:00", Orderer: "Alice"},
	}

	info := DeriveLastOrdered(entries)
	require.Len(t, info, 2)
	assert.Equal(t, entity.LastOrderedInfo{LastOrderedAt: "2026-03-10 08:00:00", LastQty: 5}, info[entity.ItemKey{Item: "Gloves", ProductNumber: "1001"}])
	assert.Equal(t, entity.LastOrderedInfo{LastOrderedAt: "2026-03-05 08:00:00", LastQty: 1}, info[entity.ItemKey{Item: "Masks", ProductNumber: "1002"}])
}

func TestDeriveLastOrderedTieGoesToLaterEntry(t *testing.T) {
	entries := []entity.OrderLogEntry{
		{Item: "Gloves", ProductNumber: "1001", Qty: 2, OrderedAt: "2026-03-01 08:00:00", Orderer: "Alice"},
		{Item: "Gloves", ProductNumber: "1001", Qty: 7, OrderedAt: "2026-03-01 08:00:00", Orderer: "Bob"},
	}

	info := DeriveLastOrdered(entries)
	assert.Equal(t, 7, info[entity.ItemKey{Item: "Gloves", ProductNumber: "1001"}].LastQty)
}

func TestDeriveLastOrderedSkipsUnparsableOnly(t *testing.T) {
	entries := []entity.OrderLogEntry{
		{Item: "Gloves", ProductNumber: "1001", Qty: 2, OrderedAt: "garbage", Orderer: "Alice"},
	}
	assert.Empty(t, DeriveLastOrdered(entries))
}

func TestHistoryNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	older := testClock.Add(-24 * time.Hour)
	require.NoError(t, svc.Commit(ctx, entity.OrderBatch{
		Orderer:     "Alice",
		GeneratedAt: older.Format(entity.TimeLayout),
		Lines:       []entity.OrderLine{{Item: "Gloves", ProductNumber: "1001", Qty: 1}},
	}, false))
	require.NoError(t, svc.Commit(ctx, entity.OrderBatch{
		Orderer:     "Bob",
		GeneratedAt: testClock.Format(entity.TimeLayout),
		Lines:       []entity.OrderLine{{Item: "Masks", ProductNumber: "1002", Qty: 2}},
	}, false))

	history := svc.History(ctx)
	require.Len(t, history, 2)
	assert.Equal(t, "Bob", history[0].Orderer)
	assert.Equal(t, "Alice", history[1].Orderer)
}

func TestClearHistory(t *testing.T) {
	svc, catalog := newTestService(t)
	ctx := context.Background()
	seedCatalog(t, catalog, entity.CatalogItem{Item: "Gloves", ProductNumber: "1001", CurrentQty: 10})

	require.NoError(t, svc.Commit(ctx, entity.OrderBatch{
		Orderer:     "Alice",
		GeneratedAt: testClock.Format(entity.TimeLayout),
		Lines: []entity.OrderLine{
			{Item: "Gloves", ProductNumber: "1001", Qty: 1},
			{Item: "Masks", ProductNumber: "1002", Qty: 2},
		},
	}, false))

	require.NoError(t, svc.ClearHistory(ctx, []entity.ItemKey{{Item: " Gloves ", ProductNumber: "1001.0"}}))
	history := svc.History(ctx)
	require.Len(t, history, 1, "keyed clear removes only matching entries")
	assert.Equal(t, "Masks", history[0].Item)

	require.NoError(t, svc.ClearHistory(ctx, nil))
	assert.Empty(t, svc.History(ctx))
	assert.Len(t, catalog.List(ctx, ""), 1, "clearing history never touches the catalog")
}

func TestShoppingListRendering(t *testing.T) {
	batch := entity.OrderBatch{
		Lines: []entity.OrderLine{
			{Item: "Gloves", ProductNumber: "1001", Qty: 3},
			{Item: "Masks", ProductNumber: "1002", Qty: 1},
		},
	}
	assert.Equal(t, "Gloves — 1001 — Qty 3\nMasks — 1002 — Qty 1", ShoppingList(batch))
}

func TestWriteBatchCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBatchCSV(&buf, entity.OrderBatch{
		Lines: []entity.OrderLine{{Item: "Gloves", ProductNumber: "1001", Qty: 3}},
	}))
	assert.Equal(t, "item,product_number,qty\nGloves,1001,3\n", buf.String())
}
