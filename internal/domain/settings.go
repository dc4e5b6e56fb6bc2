package domain

// StoreSettings is the store setup payload. Optional fields are pointers or
// zero values; collections are defaulted at the API boundary so callers never
// re-check optionality.
type StoreSettings struct {
	Categories []CategoryRef `json:"categories"`
	Processes  []ProcessRef  `json:"processes"`
	Menu       []MenuEntry   `json:"menu"`

	Logo        string `json:"logo,omitempty"`
	Facebook    string `json:"facebook,omitempty"`
	Youtube     string `json:"youtube,omitempty"`
	Instagram   string `json:"instagram,omitempty"`
	TikTok      string `json:"tiktok,omitempty"`
	XPlatform   string `json:"x_platform,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Name        string `json:"name,omitempty"`

	DeliveryFeeEnabled   bool     `json:"delivery_fee_enabled"`
	DeliveryFeeThreshold *float64 `json:"delivery_fee_threshold,omitempty"`
	DeliveryFee          *float64 `json:"delivery_fee,omitempty"`

	PaymentSystemEnabled bool   `json:"payment_system_enabled"`
	PaymentSystemURL     string `json:"payment_system_url,omitempty"`

	CheckoutNote           string `json:"checkout_note,omitempty"`
	TransactionNote        string `json:"transaction_note,omitempty"`
	TransactionNoteEnabled bool   `json:"transaction_note_enabled,omitempty"`
}

type CategoryRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ProcessRef struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type MenuEntry struct {
	ID       int        `json:"id"`
	URL      string     `json:"url"`
	Title    string     `json:"title"`
	Children []MenuLink `json:"children"`
	IsParent bool       `json:"isParent"`
}

type MenuLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Normalize fills the collection defaults so absent fields decode to empty
// slices rather than nil.
func (s *StoreSettings) Normalize() {
	if s.Categories == nil {
		s.Categories = []CategoryRef{}
	}
	if s.Processes == nil {
		s.Processes = []ProcessRef{}
	}
	if s.Menu == nil {
		s.Menu = []MenuEntry{}
	}
	for i := range s.Menu {
		if s.Menu[i].Children == nil {
			s.Menu[i].Children = []MenuLink{}
		}
	}
}
