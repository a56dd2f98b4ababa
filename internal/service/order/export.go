package order

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/stockroom-app/stockroom/internal/entity"
)

// ShoppingList renders a batch as copy/paste plain text, one line per item.
func ShoppingList(batch entity.OrderBatch) string {
	lines := make([]string, 0, len(batch.Lines))
	for _, line := range batch.Lines {
		lines = append(lines, fmt.Sprintf("%s — %s — Qty %d", line.Item, line.ProductNumber, line.Qty))
	}
	return strings.Join(lines, "\n")
}

// WriteBatchCSV streams the batch lines as a downloadable CSV.
func WriteBatchCSV(w io.Writer, batch entity.OrderBatch) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"item", "product_number", "qty"}); err != nil {
		return err
	}
	for _, line := range batch.Lines {
		if err := writer.Write([]string{line.Item, line.ProductNumber, strconv.Itoa(line.Qty)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
