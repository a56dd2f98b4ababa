package dto

// OrderLineRequest is one quantity selection in an order request.
type OrderLineRequest struct {
	Item          string `json:"item"`
	ProductNumber string `json:"product_number"`
	Qty           int    `json:"qty"`
}

// PlaceOrderRequest is the payload for placing an order.
type PlaceOrderRequest struct {
	Orderer        string             `json:"orderer"`
	DecrementStock bool               `json:"decrement_stock"`
	Lines          []OrderLineRequest `json:"lines"`
}

// OrderBatchResponse represents a generated order batch.
type OrderBatchResponse struct {
	ID           string              `json:"id,omitempty"`
	Orderer      string              `json:"orderer"`
	GeneratedAt  string              `json:"generated_at"`
	Lines        []OrderLineResponse `json:"lines"`
	ShoppingList string              `json:"shopping_list,omitempty"`
}

// OrderLineResponse is one line of a batch response.
type OrderLineResponse struct {
	Item          string `json:"item"`
	ProductNumber string `json:"product_number"`
	Qty           int    `json:"qty"`
}

// OrderLogEntryResponse represents one order history row.
type OrderLogEntryResponse struct {
	Item          string `json:"item"`
	ProductNumber string `json:"product_number"`
	Qty           int    `json:"qty"`
	OrderedAt     string `json:"ordered_at"`
	Orderer       string `json:"orderer"`
}

// ClearLogRequest selects history entries to remove; empty means all.
type ClearLogRequest struct {
	Keys []OrderLineRequest `json:"keys"`
}
