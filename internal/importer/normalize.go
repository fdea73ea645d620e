package importer

import (
	"errors"
	"math/rand"
	"strconv"
	"strings"

	"woodoctor/pkg/models"
)

// DefaultImageBaseURL prefixes relative image paths found in source files.
// Override with the IMAGE_BASE_URL environment variable.
const DefaultImageBaseURL = "https://images.williams-trading.com/product_images"

// ValidProductTypes are the product types WooCommerce accepts.
var ValidProductTypes = []string{"simple", "grouped", "external", "variable"}

var errMissingName = errors.New("record has no product name")

// NormalizeProductType maps an arbitrary source type onto a valid WooCommerce
// product type. Unrecognized or empty input becomes "simple".
func NormalizeProductType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	if t == "" {
		return "simple"
	}
	for _, valid := range ValidProductTypes {
		if t == valid {
			return t
		}
	}
	switch {
	case strings.Contains(t, "var") || strings.Contains(t, "option"):
		return "variable"
	case strings.Contains(t, "ext") || strings.Contains(t, "aff"):
		return "external"
	case strings.Contains(t, "group") || strings.Contains(t, "bundle"):
		return "grouped"
	}
	return "simple"
}

// NormalizeProductStatus maps an arbitrary source status onto a valid
// WooCommerce publication status. Stock-level words like "instock" are a
// common source-feed artifact and publish the product.
func NormalizeProductStatus(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "instock", "draft":
		return "publish"
	case "publish", "pending", "private":
		return s
	}
	return "publish"
}

// CoerceStockQuantity parses a stock value, treating anything non-numeric as
// zero.
func CoerceStockQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// SplitLines breaks a newline-separated multi-value into trimmed, non-empty
// entries.
func SplitLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ResolveImageURL turns a source image reference into an absolute URL.
// Absolute references pass through; relative paths are joined to the base.
func ResolveImageURL(baseURL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if baseURL == "" {
		baseURL = DefaultImageBaseURL
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(ref, "/")
}

const skuTokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateSKUToken returns an 8-character lowercase alphanumeric token.
func GenerateSKUToken() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = skuTokenAlphabet[rand.Intn(len(skuTokenAlphabet))]
	}
	return string(b)
}

// UniquifySKU appends a random token to a SKU so repeated uploads of the same
// source record do not collide on the remote store. A blank SKU becomes the
// bare token.
func UniquifySKU(original string) string {
	token := GenerateSKUToken()
	original = strings.TrimSpace(original)
	if original == "" {
		return token
	}
	return original + "-" + token
}

// BuildStagedProduct validates and normalizes one parsed record into a staged
// product. The record must carry a name; everything else has a usable default.
func BuildStagedProduct(record map[string]string) (*models.StagedProduct, error) {
	name := strings.TrimSpace(record["name"])
	if name == "" {
		return nil, errMissingName
	}

	return &models.StagedProduct{
		Name:             name,
		Description:      record["description"],
		ShortDescription: record["short_description"],
		RegularPrice:     strings.TrimSpace(record["regular_price"]),
		SalePrice:        strings.TrimSpace(record["sale_price"]),
		SKU:              strings.TrimSpace(record["sku"]),
		StockQuantity:    CoerceStockQuantity(record["stock_quantity"]),
		Categories:       record["categories"],
		Tags:             record["tags"],
		Images:           record["images"],
		Status:           NormalizeProductStatus(record["status"]),
		Type:             NormalizeProductType(record["type"]),
		Virtual:          parseBool(record["virtual"]),
		Downloadable:     parseBool(record["downloadable"]),
	}, nil
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
