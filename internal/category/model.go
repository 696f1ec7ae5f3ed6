package category

import "errors"

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrSubcategoryNotFound = errors.New("subcategory not found")
)

// Subcategory is the shelf level products attach to.
type Subcategory struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"categoryId"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
}

// Category groups subcategories for storefront navigation.
type Category struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	Subcategories []Subcategory `json:"subcategories"`
}
