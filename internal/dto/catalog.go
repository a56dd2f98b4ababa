package dto

// CatalogItemResponse represents a catalog row as exposed via HTTP,
// merged with the derived last-ordered view when available.
type CatalogItemResponse struct {
	Item          string `json:"item"`
	ProductNumber string `json:"product_number"`
	CurrentQty    int    `json:"current_qty"`
	SortOrder     int    `json:"sort_order"`
	LastOrderedAt string `json:"last_ordered_at,omitempty"`
	LastQty       int    `json:"last_qty,omitempty"`
}

// IngestResponse reports a catalog upload result.
type IngestResponse struct {
	Items int `json:"items"`
}
