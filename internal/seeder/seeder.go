package seeder

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/entity"
	catalogrepo "github.com/stockroom-app/stockroom/internal/repository/catalog"
	peoplerepo "github.com/stockroom-app/stockroom/internal/repository/people"
	"github.com/stockroom-app/stockroom/internal/storage"
)

// Seeder writes sample data files for local/dev setups.
type Seeder struct {
	files   *storage.Files
	catalog *catalogrepo.Store
	people  *peoplerepo.Store
	logger  *zap.Logger
}

// New constructs a Seeder over the configured data files.
func New(files *storage.Files, catalog *catalogrepo.Store, people *peoplerepo.Store, logger *zap.Logger) *Seeder {
	return &Seeder{files: files, catalog: catalog, people: people, logger: logger}
}

// Catalog seeds a sample catalog when the file is absent.
func (s *Seeder) Catalog(ctx context.Context) error {
	if _, err := os.Stat(s.files.Catalog); err == nil {
		s.logger.Info("catalog already present; skipping seed")
		return nil
	}

	samples := []entity.CatalogItem{
		{Item: "Nitrile Gloves (M)", ProductNumber: "1001", CurrentQty: 10, SortOrder: 0},
		{Item: "Nitrile Gloves (L)", ProductNumber: "1002", CurrentQty: 10, SortOrder: 1},
		{Item: "Paper Towels", ProductNumber: "2040", CurrentQty: 24, SortOrder: 2},
		{Item: "Isopropyl Alcohol 70%", ProductNumber: "3310", CurrentQty: 6, SortOrder: 3},
		{Item: "Sharpie Markers", ProductNumber: "4120", CurrentQty: 12, SortOrder: 4},
	}

	if err := s.catalog.Write(ctx, samples); err != nil {
		return err
	}

	s.logger.Info("seeded catalog", zap.Int("items", len(samples)))
	return nil
}

// People seeds a sample orderer list when the file is absent.
func (s *Seeder) People(ctx context.Context) error {
	if _, err := os.Stat(s.files.People); err == nil {
		s.logger.Info("people list already present; skipping seed")
		return nil
	}

	names := []string{"Alice", "Bob", "Charlie"}
	if err := s.people.Write(ctx, names); err != nil {
		return err
	}

	s.logger.Info("seeded people list", zap.Int("names", len(names)))
	return nil
}
