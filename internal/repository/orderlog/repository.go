// Package orderlog persists the append-only order history and the
// most-recent-batch snapshot.
//
// Unlike catalog reads, a failed log write always surfaces to the caller: a
// lost order record is lost business data and is never swallowed.
package orderlog

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/entity"
	"github.com/stockroom-app/stockroom/internal/storage"
)

var repoTracer = otel.Tracer("github.com/stockroom-app/stockroom/repository/orderlog")

// Header is the persisted order-log column layout.
var Header = []string{"item", "product_number", "qty", "ordered_at", "orderer"}

// Log owns the order history file.
type Log struct {
	path   string
	logger *zap.Logger
}

// NewLog wires the order log over the configured data file.
func NewLog(files *storage.Files, logger *zap.Logger) *Log {
	return &Log{path: files.OrderLog, logger: logger}
}

// ReadAll returns every history row in on-disk order. Missing or corrupt
// files yield an empty log.
func (l *Log) ReadAll(ctx context.Context) []entity.OrderLogEntry {
	_, span := repoTracer.Start(ctx, "OrderLog.ReadAll")
	defer span.End()

	table, err := storage.ReadTable(l.path)
	if err != nil {
		l.logger.Warn("order log unreadable; treating as empty", zap.String("path", l.path), zap.Error(err))
		return nil
	}
	if len(table) == 0 {
		return nil
	}

	entries := make([]entity.OrderLogEntry, 0, len(table)-1)
	for _, row := range table[1:] {
		entry := decodeEntry(row)
		if entry.Item == "" && entry.ProductNumber == "" {
			continue
		}
		entries = append(entries, entry)
	}

	span.SetAttributes(attribute.Int("orderlog.entries", len(entries)))
	return entries
}

// Append stamps the lines with the timestamp and orderer, merges them with
// the existing history, and writes back the union. Rows identical in every
// field collapse to one, first seen wins; surviving order is existing rows
// before new ones.
func (l *Log) Append(ctx context.Context, lines []entity.OrderLine, orderer string, at time.Time) error {
	ctx, span := repoTracer.Start(ctx, "OrderLog.Append", trace.WithAttributes(
		attribute.Int("orderlog.lines", len(lines)),
		attribute.String("orderlog.orderer", orderer),
	))
	defer span.End()

	stamp := at.Format(entity.TimeLayout)
	merged := l.ReadAll(ctx)
	for _, line := range lines {
		merged = append(merged, entity.OrderLogEntry{
			Item:          line.Item,
			ProductNumber: line.ProductNumber,
			Qty:           line.Qty,
			OrderedAt:     stamp,
			Orderer:       orderer,
		})
	}

	if err := l.write(dedupe(merged)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		return err
	}
	return nil
}

// Clear removes every entry matching the predicate and persists the rest.
// A nil predicate clears the whole history.
func (l *Log) Clear(ctx context.Context, match func(entity.OrderLogEntry) bool) error {
	ctx, span := repoTracer.Start(ctx, "OrderLog.Clear")
	defer span.End()

	if match == nil {
		match = func(entity.OrderLogEntry) bool { return true }
	}

	entries := l.ReadAll(ctx)
	kept := entries[:0]
	for _, entry := range entries {
		if !match(entry) {
			kept = append(kept, entry)
		}
	}

	if err := l.write(kept); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "clear failed")
		return err
	}
	return nil
}

func (l *Log) write(entries []entity.OrderLogEntry) error {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.Item,
			entry.ProductNumber,
			strconv.Itoa(entry.Qty),
			entry.OrderedAt,
			entry.Orderer,
		})
	}
	return storage.WriteTable(l.path, Header, rows)
}

func decodeEntry(row []string) entity.OrderLogEntry {
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
	return entity.OrderLogEntry{
		Item:          entity.NormalizeItemName(get(0)),
		ProductNumber: entity.CanonicalProductNumber(get(1)),
		Qty:           qty,
		OrderedAt:     get(3),
		Orderer:       get(4),
	}
}

// dedupe collapses rows that match on every field, keeping the first.
func dedupe(entries []entity.OrderLogEntry) []entity.OrderLogEntry {
	seen := make(map[entity.OrderLogEntry]struct{}, len(entries))
	out := make([]entity.OrderLogEntry, 0, len(entries))
	for _, entry := range entries {
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		out = append(out, entry)
	}
	return out
}
