package woocommerce

import (
	"strings"

	"woodoctor/internal/importer"
)

// ProductPayload is the body sent when creating or updating a product.
// Pointer fields distinguish "not set" from zero values so updates only touch
// what the caller filled in.
type ProductPayload struct {
	Name             string        `json:"name,omitempty"`
	Type             string        `json:"type,omitempty"`
	Status           string        `json:"status,omitempty"`
	Description      string        `json:"description,omitempty"`
	ShortDescription string        `json:"short_description,omitempty"`
	SKU              string        `json:"sku,omitempty"`
	RegularPrice     string        `json:"regular_price,omitempty"`
	SalePrice        string        `json:"sale_price,omitempty"`
	StockQuantity    *int          `json:"stock_quantity,omitempty"`
	StockStatus      string        `json:"stock_status,omitempty"`
	ManageStock      *bool         `json:"manage_stock,omitempty"`
	Backorders       string        `json:"backorders,omitempty"`
	Virtual          bool          `json:"virtual"`
	Downloadable     bool          `json:"downloadable"`
	Categories       []CategoryRef `json:"categories,omitempty"`
	Tags             []TagRef      `json:"tags,omitempty"`
	Images           []Image       `json:"images,omitempty"`
}

var validStatuses = map[string]bool{
	"draft":   true,
	"pending": true,
	"private": true,
	"publish": true,
}

// prepareForCreate fills the invariants the store API expects: a derived
// stock status, a valid publication status, managed stock with no backorders,
// and a valid product type.
func (p *ProductPayload) prepareForCreate() {
	if p.StockStatus == "" {
		p.StockStatus = deriveStockStatus(p.StockQuantity)
	}
	p.Status = guardStatus(p.Status)
	p.applyStockDefaults()
	p.Type = importer.NormalizeProductType(p.Type)
}

// prepareForUpdate applies the same guards but leaves unset fields alone.
func (p *ProductPayload) prepareForUpdate() {
	if p.StockQuantity != nil && p.StockStatus == "" {
		p.StockStatus = deriveStockStatus(p.StockQuantity)
	}
	if p.Status != "" {
		p.Status = guardStatus(p.Status)
	}
	p.applyStockDefaults()
	if p.Type != "" {
		p.Type = importer.NormalizeProductType(p.Type)
	}
}

func (p *ProductPayload) applyStockDefaults() {
	if p.StockQuantity == nil {
		return
	}
	if p.ManageStock == nil {
		manage := true
		p.ManageStock = &manage
	}
	if p.Backorders == "" {
		p.Backorders = "no"
	}
}

func deriveStockStatus(quantity *int) string {
	if quantity != nil && *quantity > 0 {
		return "instock"
	}
	return "outofstock"
}

// guardStatus maps stock-level words and unknown values onto valid
// publication statuses. "outofstock" parks the product as a draft.
func guardStatus(status string) string {
	switch strings.ToLower(status) {
	case "":
		return "publish"
	case "instock":
		return "publish"
	case "outofstock":
		return "draft"
	}
	if !validStatuses[status] {
		return "publish"
	}
	return status
}
