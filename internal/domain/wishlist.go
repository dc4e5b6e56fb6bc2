package domain

// WishlistItem marks a product the visitor saved for later, unique by slug.
// AddedAt is an ISO-8601 timestamp assigned when the item was saved.
type WishlistItem struct {
	Slug    string `json:"slug"`
	AddedAt string `json:"added_at"`
}

// Slugs extracts the slug of every item, preserving order.
func Slugs(items []WishlistItem) []string {
	slugs := make([]string, 0, len(items))
	for _, item := range items {
		slugs = append(slugs, item.Slug)
	}
	return slugs
}
