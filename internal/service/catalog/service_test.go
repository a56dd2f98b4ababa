package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/config"
	"github.com/stockroom-app/stockroom/internal/entity"
	"github.com/stockroom-app/stockroom/internal/normalizer"
	repo "github.com/stockroom-app/stockroom/internal/repository/catalog"
	"github.com/stockroom-app/stockroom/internal/storage"
	"github.com/stockroom-app/stockroom/pkg/errorbank"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()
	logger := zap.NewNop()
	files := &storage.Files{Dir: dir, Catalog: filepath.Join(dir, "catalog.csv")}
	return NewService(Params{
		Store:  repo.NewStore(files, logger),
		Config: config.Config{},
		Logger: logger,
	})
}

func TestIngestReplacesCatalog(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Upsert(ctx, entity.CatalogItem{Item: "Old Item", ProductNumber: "9999"}))

	table := [][]string{
		{"Gloves", "1001"},
		{"Masks", "1002"},
		{"Wipes", "1003"},
		{"Tape", "1004"},
		{"Foil", "1005"},
	}
	count, err := svc.Ingest(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	items := svc.List(ctx, "")
	require.Len(t, items, 5, "previous catalog content is gone")
	assert.Equal(t, "Gloves", items[0].Item)
}

func TestIngestRejectsUndetectableTables(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Upsert(ctx, entity.CatalogItem{Item: "Gloves", ProductNumber: "1001"}))

	_, err := svc.Ingest(ctx, [][]string{{"just", "words"}, {"no", "numbers"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, normalizer.ErrNoColumnPairs)
	assert.Equal(t, errorbank.KindUnprocessableEntity, errorbank.From(err).Kind())

	assert.Len(t, svc.List(ctx, ""), 1, "a rejected upload leaves the catalog untouched")
}

func TestListSearchFiltersByName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Upsert(ctx, entity.CatalogItem{Item: "Blue Towels", ProductNumber: "1001"}))
	require.NoError(t, svc.Upsert(ctx, entity.CatalogItem{Item: "Gloves", ProductNumber: "1002", SortOrder: 1}))

	assert.Len(t, svc.List(ctx, ""), 2)

	hits := svc.List(ctx, " towel ")
	require.Len(t, hits, 1)
	assert.Equal(t, "Blue Towels", hits[0].Item)

	assert.Empty(t, svc.List(ctx, "acid"))
}

func TestRemoveAndDecrement(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	key := entity.ItemKey{Item: "Gloves", ProductNumber: "1001"}

	require.NoError(t, svc.Upsert(ctx, entity.CatalogItem{Item: "Gloves", ProductNumber: "1001", CurrentQty: 5}))

	require.NoError(t, svc.Decrement(ctx, key, 2))
	assert.Equal(t, 3, svc.List(ctx, "")[0].CurrentQty)

	require.NoError(t, svc.Remove(ctx, []string{"Gloves"}))
	assert.Empty(t, svc.List(ctx, ""))
}
