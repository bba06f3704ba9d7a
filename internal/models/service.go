package models

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryWedding Category = "wedding"
	CategoryHome    Category = "home"
	CategoryOffice  Category = "office"
	CategorySeminar Category = "seminar"
	CategoryMeeting Category = "meeting"
)

// Categories is the fixed catalog enumeration, in display order.
var Categories = []Category{CategoryWedding, CategoryHome, CategoryOffice, CategorySeminar, CategoryMeeting}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type SortOrder string

const (
	SortNone      SortOrder = ""
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
)

// ParseSortOrder treats anything unrecognised (including "none") as SortNone.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(strings.TrimSpace(s)) {
	case SortPriceAsc:
		return SortPriceAsc
	case SortPriceDesc:
		return SortPriceDesc
	default:
		return SortNone
	}
}

type ServiceFilter struct {
	SearchText string    `json:"searchText,omitempty"`
	Category   Category  `json:"category,omitempty"`
	Sort       SortOrder `json:"sortOrder,omitempty"`
	// Limit caps the result; zero means the whole catalog.
	Limit int `json:"limit,omitempty"`
}

// Service is a catalog entry.
type Service struct {
	ID             string          `json:"_id"`
	Name           string          `json:"service_name"`
	Cost           decimal.Decimal `json:"cost"`
	Unit           string          `json:"unit"`
	Category       Category        `json:"service_category"`
	Description    string          `json:"description"`
	Features       FeatureList     `json:"features"`
	ImageURL       string          `json:"image"`
	CreatedByEmail string          `json:"createdByEmail,omitempty"`
}

// ServiceInput is the admin create/update payload.
type ServiceInput struct {
	Name           string          `json:"service_name"`
	Cost           decimal.Decimal `json:"cost"`
	Unit           string          `json:"unit"`
	Category       Category        `json:"service_category"`
	Description    string          `json:"description"`
	Features       FeatureList     `json:"features"`
	ImageURL       string          `json:"image"`
	CreatedByEmail string          `json:"createdByEmail,omitempty"`
}

// FeatureList decodes either a JSON array or a comma separated string.
type FeatureList []string

func (f *FeatureList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*f = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*f = SplitFeatures(s)
	return nil
}

// SplitFeatures splits a comma separated feature string, dropping blanks.
func SplitFeatures(s string) FeatureList {
	out := FeatureList{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
