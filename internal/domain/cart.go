package domain

// CartItem is a single line of the locally persisted cart. Price is a
// client-cached snapshot; the authoritative price comes from the variant
// lookup and is reconciled at render or submit time.
type CartItem struct {
	SKU    string  `json:"sku"`
	Amount int     `json:"amount"`
	Price  float64 `json:"price"`
}

// TotalCount sums the amounts of all items.
func TotalCount(items []CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Amount
	}
	return total
}
