package woocommerce

import (
	"sort"
	"strings"
)

// Schema is a WooCommerce product schema document. Only the property tree is
// read; everything else in the document is ignored.
type Schema struct {
	Properties map[string]SchemaProperty `json:"properties"`
}

// SchemaProperty is one node of the schema property tree.
type SchemaProperty struct {
	Type       string                    `json:"type"`
	Properties map[string]SchemaProperty `json:"properties"`
	Items      *SchemaProperty           `json:"items"`
}

const (
	maxFieldSegments = 4
	maxFieldLength   = 50
)

// ExtractSchemaFields flattens the schema property tree into mapping-target
// field names. Nested properties join with underscores; excessively nested
// or very long names are dropped. Names come out sorted at each nesting
// level and deduplicated, so the vocabulary is stable across refreshes.
func ExtractSchemaFields(schema *Schema) []string {
	if schema == nil || len(schema.Properties) == 0 {
		return nil
	}

	var fields []string
	seen := make(map[string]bool)
	add := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		fields = append(fields, name)
	}

	var walk func(prop SchemaProperty, prefix string)
	walk = func(prop SchemaProperty, prefix string) {
		props := prop.Properties
		if props == nil && prop.Items != nil {
			props = prop.Items.Properties
		}
		for _, name := range sortedKeys(props) {
			full := name
			if prefix != "" {
				full = prefix + "_" + name
			}
			add(full)
			walk(props[name], full)
		}
	}

	for _, name := range sortedKeys(schema.Properties) {
		add(name)
		walk(schema.Properties[name], name)
	}

	filtered := fields[:0]
	for _, f := range fields {
		if strings.Count(f, "_")+1 <= maxFieldSegments && len(f) <= maxFieldLength {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

func sortedKeys(props map[string]SchemaProperty) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultProductFields is the mapping-target vocabulary used when the store's
// schema endpoint is unreachable or yields nothing.
var DefaultProductFields = []string{
	"name",
	"description",
	"short_description",
	"regular_price",
	"sale_price",
	"sku",
	"stock_quantity",
	"categories",
	"tags",
	"status",
	"type",
	"virtual",
	"downloadable",
	"images",
	"weight",
	"dimensions",
	"attributes",
	"variations",
	"related_ids",
	"upsell_ids",
	"cross_sell_ids",
	"parent_id",
	"reviews_allowed",
	"purchase_note",
	"menu_order",
	"slug",
}
