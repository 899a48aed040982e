// Package catalog provides the catalog queries (categories, brands,
// products, search) and the normalization of the backend's heterogeneous
// record shapes into canonical display projections.
package catalog

import (
	"math"
	"strings"

	"github.com/tidwall/gjson"
)

// Product is a read-only display projection computed from a raw record.
// It is recomputed per request and never persisted.
type Product struct {
	ID              string
	Name            string
	Image           string
	Slug            string
	Description     string
	Price           float64
	SalePrice       float64
	HasDiscount     bool
	DiscountPercent int
	Rating          float64
	InStock         bool
}

// EffectivePrice is the price a purchase would use: the sale price when one
// is set, the regular price otherwise.
func (p Product) EffectivePrice() float64 {
	if p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.Price
}

// Category is the normalized view of a category or brand record.
type Category struct {
	ID    string
	Name  string
	Image string
	Slug  string
}

// Normalize extracts a canonical product from a raw record, preferring the
// given locale for localized variants. It is pure and total: every
// attribute falls back through its chain and ends at a default, so no input
// shape can make it fail.
func Normalize(raw gjson.Result, locale string) Product {
	if locale == "" {
		locale = "en"
	}

	p := Product{
		ID:          raw.Get("id").String(),
		Name:        pickName(raw, locale),
		Image:       pickImage(raw),
		Slug:        pickSlug(raw, locale),
		Description: stripHTML(pickLocalized(raw, "description", locale)),
		Price:       raw.Get("price").Float(),
		SalePrice:   raw.Get("sale_price").Float(),
		Rating:      raw.Get("rating").Float(),
		InStock:     true,
	}

	if p.SalePrice > 0 && p.Price > 0 && p.SalePrice < p.Price {
		p.HasDiscount = true
		p.DiscountPercent = int(math.Round((p.Price - p.SalePrice) / p.Price * 100))
	}

	if v := raw.Get("in_stock"); v.Exists() && !v.Bool() {
		p.InStock = false
	}
	if v := raw.Get("stock"); v.Exists() && v.Int() == 0 {
		p.InStock = false
	}

	return p
}

// NormalizeCategory extracts a canonical category or brand view.
func NormalizeCategory(raw gjson.Result, locale string) Category {
	if locale == "" {
		locale = "en"
	}
	return Category{
		ID:    raw.Get("id").String(),
		Name:  pickName(raw, locale),
		Image: pickImage(raw),
		Slug:  pickSlug(raw, locale),
	}
}

func pickName(raw gjson.Result, locale string) string {
	for _, v := range []gjson.Result{raw.Get("name"), raw.Get("title")} {
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	if s := pickLocalized(raw, "name", locale); s != "" {
		return s
	}
	return "Unnamed Product"
}

func pickImage(raw gjson.Result) string {
	for _, field := range []string{"image", "img", "thumbnail"} {
		if s := strings.TrimSpace(raw.Get(field).String()); s != "" {
			return s
		}
	}
	if s := strings.TrimSpace(raw.Get("imgs.0.img").String()); s != "" {
		return s
	}
	return ""
}

func pickSlug(raw gjson.Result, locale string) string {
	if s := strings.TrimSpace(raw.Get("slug").String()); s != "" {
		return s
	}
	if s := pickLocalized(raw, "slug", locale); s != "" {
		return s
	}
	return raw.Get("id").String()
}

// pickLocalized resolves a field from the langs variants: the requested
// locale first, then whatever variant comes first.
func pickLocalized(raw gjson.Result, field, locale string) string {
	if s := strings.TrimSpace(raw.Get(field).String()); s != "" {
		return s
	}
	langs := raw.Get("langs")
	if !langs.IsArray() {
		return ""
	}
	if v := langs.Get(`#(lang=="` + locale + `").` + field); v.Exists() {
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return strings.TrimSpace(langs.Get("0." + field).String())
}

// stripHTML drops tags from backend-supplied rich text.
func stripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
