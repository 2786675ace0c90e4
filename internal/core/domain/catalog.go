package domain

import "strings"

// Category groups products in the catalog tree. ParentID is nil for
// top-level categories.
type Category struct {
	AuditRecord
	Name     string
	Slug     string
	ParentID *string
}

// Validate reports every field violation on the category together.
func (c Category) Validate() error {
	var verr ValidationError

	if strings.TrimSpace(c.Name) == "" {
		verr.Add("name", "name is required")
	}
	if strings.TrimSpace(c.Slug) == "" {
		verr.Add("slug", "slug is required")
	}

	if verr.HasErrors() {
		return &verr
	}
	return nil
}

// Product is a catalog listing. PriceCents avoids floating point money.
// ImageKey references the object-store key of the product photo, empty when
// no image has been uploaded yet.
type Product struct {
	AuditRecord
	CategoryID  string
	Name        string
	Description string
	PriceCents  int64
	Sizes       []string
	ImageKey    string
	Archived    bool
}

// Validate reports every field violation on the product together.
func (p Product) Validate() error {
	var verr ValidationError

	if strings.TrimSpace(p.Name) == "" {
		verr.Add("name", "name is required")
	}
	if strings.TrimSpace(p.CategoryID) == "" {
		verr.Add("category_id", "category is required")
	}
	if p.PriceCents <= 0 {
		verr.Add("price_cents", "price must be positive")
	}

	if verr.HasErrors() {
		return &verr
	}
	return nil
}
