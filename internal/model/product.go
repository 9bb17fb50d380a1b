package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Size is a drink cup size.
type Size string

const (
	SizeSmall  Size = "S"
	SizeMedium Size = "M"
	SizeLarge  Size = "L"
)

// ParseSize accepts the short codes and full names case-insensitively.
func ParseSize(s string) (Size, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "S", "SMALL":
		return SizeSmall, true
	case "M", "MEDIUM":
		return SizeMedium, true
	case "L", "LARGE":
		return SizeLarge, true
	}
	return "", false
}

// Product represents a drink in the catalogue.
type Product struct {
	ID              string          `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	Description     string          `json:"description" db:"description"`
	BasePrice       decimal.Decimal `json:"basePrice" db:"base_price"`
	SmallUpcharge   decimal.Decimal `json:"smallUpcharge" db:"small_upcharge"`
	MediumUpcharge  decimal.Decimal `json:"mediumUpcharge" db:"medium_upcharge"`
	LargeUpcharge   decimal.Decimal `json:"largeUpcharge" db:"large_upcharge"`
	DefaultSugarPct int             `json:"defaultSugarPct" db:"default_sugar_pct"`
	DefaultIcePct   int             `json:"defaultIcePct" db:"default_ice_pct"`
	IsActive        bool            `json:"isActive" db:"is_active"`
	ImageRef        *string         `json:"imageRef,omitempty" db:"image_ref"`
	CreatedUTC      time.Time       `json:"createdUtc" db:"created_utc"`
	UpdatedUTC      *time.Time      `json:"updatedUtc,omitempty" db:"updated_utc"`
	DeletedUTC      *time.Time      `json:"deletedUtc,omitempty" db:"deleted_utc"`
}

// IsDeleted reports whether the product has been soft-deleted.
func (p *Product) IsDeleted() bool {
	return p.DeletedUTC != nil
}

// PriceFor returns the unit price of the drink in the given size.
func (p *Product) PriceFor(size Size) decimal.Decimal {
	switch size {
	case SizeSmall:
		return p.BasePrice.Add(p.SmallUpcharge)
	case SizeLarge:
		return p.BasePrice.Add(p.LargeUpcharge)
	default:
		return p.BasePrice.Add(p.MediumUpcharge)
	}
}

// ProductRequest is the payload for creating or fully updating a product.
type ProductRequest struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	BasePrice       decimal.Decimal `json:"basePrice"`
	SmallUpcharge   decimal.Decimal `json:"smallUpcharge"`
	MediumUpcharge  decimal.Decimal `json:"mediumUpcharge"`
	LargeUpcharge   decimal.Decimal `json:"largeUpcharge"`
	DefaultSugarPct int             `json:"defaultSugarPct"`
	DefaultIcePct   int             `json:"defaultIcePct"`
	IsActive        bool            `json:"isActive"`
	ImageRef        *string         `json:"imageRef,omitempty"`
}

var (
	maxBasePrice = decimal.NewFromInt(1000)
	maxUpcharge  = decimal.NewFromInt(100)
	maxTopping   = decimal.NewFromInt(100)
)

// Validate checks the request against the catalogue schema constraints.
func (r *ProductRequest) Validate() error {
	fields := map[string]string{}

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		fields["name"] = "name is required"
	} else if utf8.RuneCountInString(r.Name) > 100 {
		fields["name"] = "name must be at most 100 characters"
	}
	if utf8.RuneCountInString(r.Description) > 500 {
		fields["description"] = "description must be at most 500 characters"
	}
	checkRange(fields, "basePrice", r.BasePrice, maxBasePrice)
	checkRange(fields, "smallUpcharge", r.SmallUpcharge, maxUpcharge)
	checkRange(fields, "mediumUpcharge", r.MediumUpcharge, maxUpcharge)
	checkRange(fields, "largeUpcharge", r.LargeUpcharge, maxUpcharge)
	checkPercent(fields, "defaultSugarPct", r.DefaultSugarPct)
	checkPercent(fields, "defaultIcePct", r.DefaultIcePct)
	if r.ImageRef != nil {
		trimmed := strings.TrimSpace(*r.ImageRef)
		if trimmed == "" {
			r.ImageRef = nil
		} else if utf8.RuneCountInString(trimmed) > 300 {
			fields["imageRef"] = "imageRef must be at most 300 characters"
		} else {
			r.ImageRef = &trimmed
		}
	}

	if len(fields) > 0 {
		return NewValidationError("product is invalid", fields)
	}
	return nil
}

// Topping represents an add-on that can be put on any drink.
type Topping struct {
	ID         string          `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Price      decimal.Decimal `json:"price" db:"price"`
	IsActive   bool            `json:"isActive" db:"is_active"`
	CreatedUTC time.Time       `json:"createdUtc" db:"created_utc"`
	UpdatedUTC *time.Time      `json:"updatedUtc,omitempty" db:"updated_utc"`
	DeletedUTC *time.Time      `json:"deletedUtc,omitempty" db:"deleted_utc"`
}

// IsDeleted reports whether the topping has been soft-deleted.
func (t *Topping) IsDeleted() bool {
	return t.DeletedUTC != nil
}

// ToppingRequest is the payload for creating or fully updating a topping.
type ToppingRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	IsActive bool            `json:"isActive"`
}

// Validate checks the request against the catalogue schema constraints.
func (r *ToppingRequest) Validate() error {
	fields := map[string]string{}

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		fields["name"] = "name is required"
	} else if utf8.RuneCountInString(r.Name) > 50 {
		fields["name"] = "name must be at most 50 characters"
	}
	checkRange(fields, "price", r.Price, maxTopping)

	if len(fields) > 0 {
		return NewValidationError("topping is invalid", fields)
	}
	return nil
}

// SortField names a sortable catalogue column.
type SortField string

const (
	SortByName    SortField = "name"
	SortByPrice   SortField = "price"
	SortByCreated SortField = "created"
)

// CatalogFilter narrows and orders catalogue listings.
type CatalogFilter struct {
	IncludeDeleted bool
	ActiveOnly     bool
	Search         string
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
	SortBy         SortField
	Descending     bool
	Limit          int
	Offset         int
}

// Normalise applies defaults and bounds to the filter.
func (f *CatalogFilter) Normalise() {
	switch f.SortBy {
	case SortByName, SortByPrice, SortByCreated:
	default:
		f.SortBy = SortByName
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Search = strings.TrimSpace(f.Search)
}

func checkRange(fields map[string]string, name string, v, max decimal.Decimal) {
	switch {
	case v.IsNegative() || v.GreaterThan(max):
		fields[name] = fmt.Sprintf("%s must be between 0 and %s", name, max.String())
	case !v.Equal(v.Truncate(2)):
		fields[name] = fmt.Sprintf("%s must have at most 2 decimal places", name)
	}
}

func checkPercent(fields map[string]string, name string, v int) {
	if v < 0 || v > 100 {
		fields[name] = fmt.Sprintf("%s must be between 0 and 100", name)
	}
}
