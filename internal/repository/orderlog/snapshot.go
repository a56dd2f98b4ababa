package orderlog

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/entity"
	"github.com/stockroom-app/stockroom/internal/storage"
)

// SnapshotHeader is the persisted last-order column layout.
var SnapshotHeader = []string{"item", "product_number", "qty", "generated_at", "orderer"}

// Snapshot owns the most-recently-generated batch file. Exactly one batch
// exists at a time; writing a new one overwrites it.
type Snapshot struct {
	path   string
	logger *zap.Logger
}

// NewSnapshot wires the snapshot store over the configured data file.
func NewSnapshot(files *storage.Files, logger *zap.Logger) *Snapshot {
	return &Snapshot{path: files.Snapshot, logger: logger}
}

// Write replaces the snapshot with the given batch.
func (s *Snapshot) Write(ctx context.Context, batch entity.OrderBatch) error {
	_, span := repoTracer.Start(ctx, "LastOrderSnapshot.Write", trace.WithAttributes(
		attribute.Int("snapshot.lines", len(batch.Lines)),
	))
	defer span.End()

	rows := make([][]string, 0, len(batch.Lines))
	for _, line := range batch.Lines {
		rows = append(rows, []string{
			line.Item,
			line.ProductNumber,
			strconv.Itoa(line.Qty),
			batch.GeneratedAt,
			batch.Orderer,
		})
	}

	if err := storage.WriteTable(s.path, SnapshotHeader, rows); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		return err
	}
	return nil
}

// Read returns the stored batch; missing or corrupt files yield an empty
// batch.
func (s *Snapshot) Read(ctx context.Context) entity.OrderBatch {
	_, span := repoTracer.Start(ctx, "LastOrderSnapshot.Read")
	defer span.End()

	table, err := storage.ReadTable(s.path)
	if err != nil {
		s.logger.Warn("last order snapshot unreadable; treating as empty", zap.String("path", s.path), zap.Error(err))
		return entity.OrderBatch{}
	}
	if len(table) < 2 {
		return entity.OrderBatch{}
	}

	var batch entity.OrderBatch
	for _, row := range table[1:] {
		get := func(idx int) string {
			if idx >= len(row) {
				return ""
			}
			return row[idx]
		}
		qty, err := strconv.Atoi(get(2))
		if err != nil || qty < 0 {
			qty = 0
		}
		batch.Lines = append(batch.Lines, entity.OrderLine{
			Item:          get(0),
			ProductNumber: get(1),
			Qty:           qty,
		})
		batch.GeneratedAt = get(3)
		batch.Orderer = get(4)
	}
	return batch
}
