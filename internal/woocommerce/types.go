package woocommerce

import "fmt"

// Product is the subset of the WooCommerce product resource the dashboard
// works with.
type Product struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Slug             string        `json:"slug"`
	Permalink        string        `json:"permalink"`
	Type             string        `json:"type"`
	Status           string        `json:"status"`
	SKU              string        `json:"sku"`
	Price            string        `json:"price"`
	RegularPrice     string        `json:"regular_price"`
	SalePrice        string        `json:"sale_price"`
	StockQuantity    *int          `json:"stock_quantity"`
	StockStatus      string        `json:"stock_status"`
	Description      string        `json:"description"`
	ShortDescription string        `json:"short_description"`
	Categories       []CategoryRef `json:"categories"`
	Tags             []TagRef      `json:"tags"`
	Images           []Image       `json:"images"`
}

// Category is a WooCommerce product category.
type Category struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Parent int64  `json:"parent"`
	Count  int    `json:"count"`
}

// CategoryRef attaches a product to a category, by id when the category is
// known to exist remotely, by name otherwise.
type CategoryRef struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// TagRef attaches a product to a tag by name.
type TagRef struct {
	Name string `json:"name"`
}

// Image references a product image by source URL.
type Image struct {
	ID  int64  `json:"id,omitempty"`
	Src string `json:"src"`
}

// APIError is a non-2xx answer from the WooCommerce REST API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("woocommerce api: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("woocommerce api: status %d", e.StatusCode)
}
