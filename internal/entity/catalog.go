package entity

import (
	"math"
	"strconv"
	"strings"
)

// ItemKey is the natural key of a catalog item.
type ItemKey struct {
	Item          string
	ProductNumber string
}

// CatalogItem represents one orderable supply item in the catalog.
type CatalogItem struct {
	Item          string
	ProductNumber string
	CurrentQty    int
	SortOrder     int
}

// Key returns the item's natural key.
func (i CatalogItem) Key() ItemKey {
	return ItemKey{Item: i.Item, ProductNumber: i.ProductNumber}
}

// NormalizeItemName trims the name and collapses internal runs of
// whitespace to a single space.
func NormalizeItemName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// IsNumeric reports whether the cell holds a finite number.
func IsNumeric(s string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CanonicalProductNumber converts a product number to its canonical string
// form. Numeric values are rendered without a trailing fraction ("1001.0"
// becomes "1001") so that equality is always a plain string comparison;
// non-numeric values pass through trimmed.
func CanonicalProductNumber(s string) string {
	trimmed := strings.TrimSpace(s)
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return trimmed
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
