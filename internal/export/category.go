package export

import (
	"fmt"
	"strings"
)

// Category is a fixed output domain.
type Category string

const (
	CategoryPDFImages     Category = "PDF_Images"
	CategoryPDFOperations Category = "PDF_Operations"
	CategoryArchives      Category = "Archives"
	CategoryGIF           Category = "GIF"
)

var categories = []Category{
	CategoryPDFImages,
	CategoryPDFOperations,
	CategoryArchives,
	CategoryGIF,
}

// Categories returns every known category in folder-creation order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// Dir returns the subdirectory name for the category.
func (c Category) Dir() string {
	return string(c)
}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(value string) (Category, error) {
	trimmed := strings.TrimSpace(value)
	for _, known := range categories {
		if strings.EqualFold(trimmed, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown export category %q", value)
}
