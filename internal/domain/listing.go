package domain

// Kind selects which listing a request is for.
type Kind string

const (
	KindBrands Kind = "brands"
	KindTypes  Kind = "types"
)

// Kinds lists every supported listing kind in tab order.
var Kinds = []Kind{KindBrands, KindTypes}

// ParseKind converts a raw kind string into a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindBrands, KindTypes:
		return Kind(s), true
	default:
		return "", false
	}
}

// ListingEntry is a display-ready brand or category card.
type ListingEntry struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	Link     string  `json:"link"`
	ImageURL *string `json:"image_url"`
	Count    int     `json:"count"`

	// Categories only.
	AncestorName *string `json:"ancestor_name,omitempty"`

	// Brands only.
	ShortDescription string `json:"short_description,omitempty"`
	FullDescription  string `json:"full_description,omitempty"`
	NeedsExpand      bool   `json:"needs_expand"`
}
