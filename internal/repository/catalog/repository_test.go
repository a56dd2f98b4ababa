package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/entity"
	"github.com/stockroom-app/stockroom/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	files := &storage.Files{
		Dir:     t.TempDir(),
		Catalog: filepath.Join(t.TempDir(), "catalog.csv"),
	}
	return NewStore(files, zap.NewNop())
}

func TestReadMissingFileIsEmpty(t *testing.T) {
	store := newTestStore(t)
	assert.Empty(t, store.Read(context.Background()))
}

func TestReadCorruptFileDegradesToEmpty(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.path, []byte("item,\"broken\n"), 0o644))
	assert.Empty(t, store.Read(context.Background()))
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in := []entity.CatalogItem{
		{Item: "Gloves", ProductNumber: "1001", CurrentQty: 10, SortOrder: 1},
		{Item: "Masks", ProductNumber: "1002", CurrentQty: 4, SortOrder: 0},
	}
	require.NoError(t, store.Write(ctx, in))

	out := store.Read(ctx)
	require.Len(t, out, 2)
	assert.Equal(t, "Masks", out[0].Item, "rows come back ordered by sort order")
	assert.Equal(t, "Gloves", out[1].Item)
	assert.Equal(t, 10, out[1].CurrentQty)
}

func TestWriteCoercesRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, []entity.CatalogItem{
		{Item: "  Blue   Towels ", ProductNumber: "1001.0", CurrentQty: -3, SortOrder: -1},
		{Item: "", ProductNumber: "1002"},
		{Item: "Ghost", ProductNumber: ""},
	}))

	out := store.Read(ctx)
	require.Len(t, out, 1)
	assert.Equal(t, "Blue Towels", out[0].Item)
	assert.Equal(t, "1001", out[0].ProductNumber)
	assert.Equal(t, 0, out[0].CurrentQty)
	assert.Equal(t, 0, out[0].SortOrder)
}

func TestReadCoercesMalformedCells(t *testing.T) {
	store := newTestStore(t)
	content := "item,product_number,current_qty,sort_order\n" +
		"Gloves,1001,lots,\n" +
		"Masks,1002,3,2\n"
	require.NoError(t, os.WriteFile(store.path, []byte(content), 0o644))

	out := store.Read(context.Background())
	require.Len(t, out, 2)
	assert.Equal(t, "Gloves", out[0].Item)
	assert.Equal(t, 0, out[0].CurrentQty, "unparsable quantity falls back to zero")
	assert.Equal(t, 0, out[0].SortOrder, "missing sort order falls back to row position")
}

func TestUpsertOverwritesByKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, entity.CatalogItem{Item: "Gloves", ProductNumber: "1001", CurrentQty: 5}))
	require.NoError(t, store.Upsert(ctx, entity.CatalogItem{Item: "Gloves", ProductNumber: "1001", CurrentQty: 8}))

	out := store.Read(ctx)
	require.Len(t, out, 1)
	assert.Equal(t, 8, out[0].CurrentQty, "second upsert wins")

	// Same name under a different product number is a distinct row.
	require.NoError(t, store.Upsert(ctx, entity.CatalogItem{Item: "Gloves", ProductNumber: "1002", CurrentQty: 2}))
	assert.Len(t, store.Read(ctx), 2)
}

func TestRemoveFiltersByName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, []entity.CatalogItem{
		{Item: "Gloves", ProductNumber: "1001"},
		{Item: "Masks", ProductNumber: "1002", SortOrder: 1},
	}))
	require.NoError(t, store.Remove(ctx, []string{" gloves "}))

	out := store.Read(ctx)
	require.Len(t, out, 2, "removal matches the normalized name exactly")

	require.NoError(t, store.Remove(ctx, []string{" Gloves "}))
	out = store.Read(ctx)
	require.Len(t, out, 1)
	assert.Equal(t, "Masks", out[0].Item)
}

func TestDecrementClampsAtZero(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := entity.ItemKey{Item: "Gloves", ProductNumber: "1001"}

	require.NoError(t, store.Write(ctx, []entity.CatalogItem{{Item: "Gloves", ProductNumber: "1001", CurrentQty: 10}}))

	require.NoError(t, store.Decrement(ctx, key, 3))
	assert.Equal(t, 7, store.Read(ctx)[0].CurrentQty)

	require.NoError(t, store.Decrement(ctx, key, 15))
	assert.Equal(t, 0, store.Read(ctx)[0].CurrentQty)
}

func TestDecrementUnknownKeyIsNoOp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, []entity.CatalogItem{{Item: "Gloves", ProductNumber: "1001", CurrentQty: 10}}))
	require.NoError(t, store.Decrement(ctx, entity.ItemKey{Item: "Gloves", ProductNumber: "9999"}, 3))
	require.NoError(t, store.Decrement(ctx, entity.ItemKey{Item: "Gloves", ProductNumber: "1001"}, 0))

	assert.Equal(t, 10, store.Read(ctx)[0].CurrentQty)
}
