package domain

// Term is a node of a catalog taxonomy (a product category or a brand) as
// read from the store. Parent references form a forest.
type Term struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	ParentID    *string `json:"parent_id,omitempty"`
	Count       int     `json:"count"`
	ImageURL    *string `json:"image_url,omitempty"`
	AltImageURL *string `json:"alt_image_url,omitempty"`
	Description string  `json:"description,omitempty"`
	Taxonomy    string  `json:"taxonomy"`
}

// HasParent reports whether the term references a parent term.
func (t Term) HasParent() bool {
	return t.ParentID != nil && *t.ParentID != ""
}
