package entity

import "time"

// TimeLayout is the timestamp format used across all persisted order files.
const TimeLayout = "2006-01-02 15:04:05"

// OrderLogEntry is one row of the append-only order history.
//
// OrderedAt is kept as the raw persisted string: malformed timestamps are
// tolerated on read and skipped only when deriving last-ordered state.
type OrderLogEntry struct {
	Item          string
	ProductNumber string
	Qty           int
	OrderedAt     string
	Orderer       string
}

// Key returns the entry's catalog item key.
func (e OrderLogEntry) Key() ItemKey {
	return ItemKey{Item: e.Item, ProductNumber: e.ProductNumber}
}

// OrderedTime parses the entry timestamp.
func (e OrderLogEntry) OrderedTime() (time.Time, error) {
	return time.Parse(TimeLayout, e.OrderedAt)
}

// OrderLine is one (item, product number, quantity) line of an order batch.
type OrderLine struct {
	Item          string
	ProductNumber string
	Qty           int
}

// OrderBatch is the set of lines generated in a single order action.
// Exactly one batch snapshot exists at a time; a new batch overwrites it.
type OrderBatch struct {
	ID          string
	Lines       []OrderLine
	GeneratedAt string
	Orderer     string
}

// Empty reports whether the batch carries no lines.
func (b OrderBatch) Empty() bool {
	return len(b.Lines) == 0
}

// LastOrderedInfo is the derived most-recent-order view for one item.
type LastOrderedInfo struct {
	LastOrderedAt string
	LastQty       int
}
