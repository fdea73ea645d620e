package woocommerce

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestExtractSchemaFields(t *testing.T) {
	raw := `{
		"properties": {
			"name": {"type": "string"},
			"regular_price": {"type": "string"},
			"dimensions": {
				"type": "object",
				"properties": {
					"length": {"type": "string"},
					"width": {"type": "string"}
				}
			},
			"images": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"src": {"type": "string"}
					}
				}
			},
			"a_very_deeply_nested_field_name": {"type": "string"}
		}
	}`

	var schema Schema
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}

	fields := ExtractSchemaFields(&schema)
	got := make(map[string]bool, len(fields))
	for _, f := range fields {
		if got[f] {
			t.Errorf("duplicate field %q", f)
		}
		got[f] = true
	}

	for _, want := range []string{"name", "regular_price", "dimensions", "dimensions_length", "dimensions_width", "images", "images_src"} {
		if !got[want] {
			t.Errorf("missing field %q in %v", want, fields)
		}
	}

	// too many underscore segments
	if got["a_very_deeply_nested_field_name"] {
		t.Error("excessively nested field was not filtered")
	}
}

func TestExtractSchemaFieldsDeterministicOrder(t *testing.T) {
	schema := &Schema{Properties: map[string]SchemaProperty{
		"name": {Type: "string"},
		"dimensions": {Type: "object", Properties: map[string]SchemaProperty{
			"width":  {Type: "string"},
			"length": {Type: "string"},
		}},
		"sku": {Type: "string"},
	}}

	want := []string{"dimensions", "dimensions_length", "dimensions_width", "name", "sku"}
	for i := 0; i < 10; i++ {
		got := ExtractSchemaFields(schema)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("fields = %v, want %v", got, want)
		}
	}
}

func TestExtractSchemaFieldsLengthFilter(t *testing.T) {
	long := strings.Repeat("x", 60)
	schema := &Schema{Properties: map[string]SchemaProperty{
		long:    {Type: "string"},
		"short": {Type: "string"},
	}}

	fields := ExtractSchemaFields(schema)
	if len(fields) != 1 || fields[0] != "short" {
		t.Errorf("fields = %v, want [short]", fields)
	}
}

func TestExtractSchemaFieldsEmpty(t *testing.T) {
	if fields := ExtractSchemaFields(nil); fields != nil {
		t.Errorf("nil schema: got %v", fields)
	}
	if fields := ExtractSchemaFields(&Schema{}); fields != nil {
		t.Errorf("empty schema: got %v", fields)
	}
}
