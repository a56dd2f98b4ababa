package order

import (
	"context"
	"sort"
	"time"

	"github.com/stockroom-app/stockroom/internal/entity"
	"github.com/stockroom-app/stockroom/pkg/errorbank"
)

// History returns the full order log, newest first. Entries with
// unparsable timestamps sort last, keeping their on-disk order.
func (s *Service) History(ctx context.Context) []entity.OrderLogEntry {
	ctx, span := serviceTracer.Start(ctx, "OrderService.History")
	defer span.End()

	entries := s.log.ReadAll(ctx)
	sort.SliceStable(entries, func(i, j int) bool {
		ti, _ := entries[i].OrderedTime()
		tj, _ := entries[j].OrderedTime()
		return ti.After(tj)
	})
	return entries
}

// LastOrdered derives the most recent order per catalog item from the log.
func (s *Service) LastOrdered(ctx context.Context) map[entity.ItemKey]entity.LastOrderedInfo {
	ctx, span := serviceTracer.Start(ctx, "OrderService.LastOrdered")
	defer span.End()

	return DeriveLastOrdered(s.log.ReadAll(ctx))
}

// DeriveLastOrdered reduces log entries to one row per (item, product
// number): the entry with the maximum parseable timestamp, ties resolved in
// favor of the entry appearing later in the log. Entries whose timestamp
// fails to parse are skipped. Recomputed on every read; the log is the
// single source of truth.
func DeriveLastOrdered(entries []entity.OrderLogEntry) map[entity.ItemKey]entity.LastOrderedInfo {
	type candidate struct {
		at    time.Time
		entry entity.OrderLogEntry
	}

	latest := make(map[entity.ItemKey]candidate)
	for _, entry := range entries {
		at, err := entry.OrderedTime()
		if err != nil {
			continue
		}
		key := entry.Key()
		if prev, ok := latest[key]; ok && at.Before(prev.at) {
			continue
		}
		latest[key] = candidate{at: at, entry: entry}
	}

	info := make(map[entity.ItemKey]entity.LastOrderedInfo, len(latest))
	for key, c := range latest {
		info[key] = entity.LastOrderedInfo{
			LastOrderedAt: c.entry.OrderedAt,
			LastQty:       c.entry.Qty,
		}
	}
	return info
}

// LastBatch returns the most recently generated order snapshot.
func (s *Service) LastBatch(ctx context.Context) entity.OrderBatch {
	ctx, span := serviceTracer.Start(ctx, "OrderService.LastBatch")
	defer span.End()

	return s.snapshot.Read(ctx)
}

// ClearHistory removes log entries. With no keys the whole history is
// cleared; otherwise only entries matching one of the (item, product
// number) keys are removed. The catalog and people list are untouched.
func (s *Service) ClearHistory(ctx context.Context, keys []entity.ItemKey) error {
	ctx, span := serviceTracer.Start(ctx, "OrderService.ClearHistory")
	defer span.End()

	var match func(entity.OrderLogEntry) bool
	if len(keys) > 0 {
		selected := make(map[entity.ItemKey]struct{}, len(keys))
		for _, key := range keys {
			canonical := entity.ItemKey{
				Item:          entity.NormalizeItemName(key.Item),
				ProductNumber: entity.CanonicalProductNumber(key.ProductNumber),
			}
			selected[canonical] = struct{}{}
		}
		match = func(entry entity.OrderLogEntry) bool {
			_, ok := selected[entry.Key()]
			return ok
		}
	}

	if err := s.log.Clear(ctx, match); err != nil {
		return errorbank.Internal("failed to clear order history", errorbank.WithCause(err))
	}
	return nil
}
