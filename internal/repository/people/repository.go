// Package people reads the newline-delimited orderer list.
package people

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/storage"
)

// Module provides the people store to Fx.
var Module = fx.Provide(NewStore)

// Store owns the people file.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore wires a people store over the configured data file.
func NewStore(files *storage.Files, logger *zap.Logger) *Store {
	return &Store{path: files.People, logger: logger}
}

// Read returns the orderer names, one per non-blank line. A missing or
// unreadable file yields the single fallback entry "Unknown".
func (s *Store) Read(ctx context.Context) []string {
	names, err := storage.ReadLines(s.path)
	if err != nil {
		s.logger.Warn("people list unreadable; using fallback", zap.String("path", s.path), zap.Error(err))
	}
	if len(names) == 0 {
		return []string{"Unknown"}
	}
	return names
}

// Write replaces the people list.
func (s *Store) Write(ctx context.Context, names []string) error {
	return storage.WriteLines(s.path, names)
}
