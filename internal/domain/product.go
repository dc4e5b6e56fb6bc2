package domain

// ProductImage carries one image in the resolutions the API serves.
type ProductImage struct {
	ID   string `json:"id"`
	Low  string `json:"low"`
	Mid  string `json:"mid"`
	High string `json:"high"`
}

// AttributePair is a single attribute/value selection of a variant.
type AttributePair struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

// ProductShort is the reduced product reference embedded in variant lookups.
type ProductShort struct {
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	Images   []ProductImage `json:"images,omitempty"`
	MaxLimit int            `json:"max_limit,omitempty"`
}

// VariantFull is a denormalized, read-only product-variant snapshot fetched
// in batches keyed by SKU set.
type VariantFull struct {
	SKU           string          `json:"sku"`
	Price         float64         `json:"price"`
	Inventory     int             `json:"inventory"`
	DiscountPrice *float64        `json:"discount_price"`
	Images        []ProductImage  `json:"images,omitempty"`
	Attributes    []AttributePair `json:"attributes,omitempty"`
	Product       ProductShort    `json:"product"`
}
