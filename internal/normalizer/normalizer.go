// Package normalizer converts "wide" spreadsheet exports into the canonical
// catalog item list. A wide export repeats an item-name column followed,
// within the next few columns, by a mostly numeric product-number column;
// the column mapping is never declared, so it is detected heuristically.
package normalizer

import (
	"errors"
	"strings"

	"github.com/stockroom-app/stockroom/internal/entity"
)

// ErrNoColumnPairs is returned when no name/product-number column pair can
// be detected in the input. Callers must leave the catalog untouched.
var ErrNoColumnPairs = errors.New("no name/product-number column pairs detected")

// candidateSpan is how far to the right of a name column a product-number
// column may sit.
const candidateSpan = 3

// Normalize scans the raw table (data rows only, no header) and emits one
// tidy catalog item per valid name/product-number cell pair.
//
// Column detection walks a cursor left to right: at each position the next
// three columns are inspected as product-number candidates, and the first
// one whose numeric density clears the acceptance threshold is paired with
// the cursor column. Accepted pairs advance the cursor by two; otherwise
// the cursor column is skipped.
//
// Emitted rows are deduplicated on (item, product number) keeping the first
// occurrence, and sort order is assigned by emission index.
func Normalize(table [][]string) ([]entity.CatalogItem, error) {
	rows := len(table)
	cols := 0
	for _, row := range table {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if rows == 0 || cols == 0 {
		return nil, ErrNoColumnPairs
	}

	threshold := acceptanceThreshold(rows)

	var emitted []entity.CatalogItem
	paired := false
	for i := 0; i < cols; i++ {
		numberCol := -1
		for off := 1; off <= candidateSpan && i+off < cols; off++ {
			if numericCount(table, i+off) >= threshold {
				numberCol = i + off
				break
			}
		}
		if numberCol < 0 {
			continue
		}

		paired = true
		for r := 0; r < rows; r++ {
			item := entity.NormalizeItemName(cell(table, r, i))
			if item == "" || strings.EqualFold(item, "nan") {
				continue
			}
			raw := cell(table, r, numberCol)
			if !entity.IsNumeric(raw) {
				continue
			}
			emitted = append(emitted, entity.CatalogItem{
				Item:          item,
				ProductNumber: entity.CanonicalProductNumber(raw),
			})
		}
		i++ // consume the name column; the loop increment skips the number column
	}

	if !paired {
		return nil, ErrNoColumnPairs
	}

	return dedupe(emitted), nil
}

// acceptanceThreshold is the minimum count of numeric cells for a column to
// qualify as a product-number column: max(5, 10% of row count). The floor
// keeps sparse incidental numbers in short tables from qualifying; the
// percentage scales the bar for long tables.
func acceptanceThreshold(rows int) float64 {
	pct := 0.10 * float64(rows)
	if pct < 5 {
		return 5
	}
	return pct
}

func numericCount(table [][]string, col int) float64 {
	count := 0
	for r := range table {
		if v := strings.TrimSpace(cell(table, r, col)); v != "" && entity.IsNumeric(v) {
			count++
		}
	}
	return float64(count)
}

func cell(table [][]string, row, col int) string {
	if col >= len(table[row]) {
		return ""
	}
	return table[row][col]
}

// dedupe drops exact (item, product number) duplicates keeping the first
// occurrence, then assigns sort order by emission index.
func dedupe(items []entity.CatalogItem) []entity.CatalogItem {
	seen := make(map[entity.ItemKey]struct{}, len(items))
	out := make([]entity.CatalogItem, 0, len(items))
	for _, item := range items {
		key := item.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		item.SortOrder = len(out)
		out = append(out, item)
	}
	return out
}
