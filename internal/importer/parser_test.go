package importer

import (
	"fmt"
	"strings"
	"testing"

	"woodoctor/pkg/models"
)

var csvMappings = map[string]string{
	"title":      "name",
	"price":      "regular_price",
	"sku":        "sku",
	"categories": "categories",
	"images":     "images",
}

func TestParseCSV(t *testing.T) {
	content := "title,price,sku\n" +
		`"Widget, Deluxe",19.99,W-1` + "\n" +
		"Gadget,4.99,G-1\n"

	records, total, err := Parse(content, models.FileTypeCSV, csvMappings, 0)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0]["name"] != "Widget, Deluxe" {
		t.Errorf("name = %q, want %q", records[0]["name"], "Widget, Deluxe")
	}
	if records[0]["regular_price"] != "19.99" {
		t.Errorf("regular_price = %q, want %q", records[0]["regular_price"], "19.99")
	}
	if records[1]["sku"] != "G-1" {
		t.Errorf("sku = %q, want %q", records[1]["sku"], "G-1")
	}
}

func TestParseCSVPreviewLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("title,price\n")
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, "Product %d,%d.00\n", i, i)
	}

	records, total, err := Parse(b.String(), models.FileTypeCSV, csvMappings, PreviewLimit)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != PreviewLimit {
		t.Errorf("len(records) = %d, want %d", len(records), PreviewLimit)
	}
	if total != 25 {
		t.Errorf("total = %d, want 25", total)
	}
}

func TestParseCSVUnmappedFieldsDropped(t *testing.T) {
	content := "title,internal_code\nWidget,X123\n"
	records, _, err := Parse(content, models.FileTypeCSV, csvMappings, 0)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if _, ok := records[0]["internal_code"]; ok {
		t.Error("unmapped source field leaked into record")
	}
	if len(records[0]) != 1 {
		t.Errorf("record has %d fields, want 1", len(records[0]))
	}
}

func TestParseCSVShortRowOmitsMissingColumns(t *testing.T) {
	content := "title,price,sku\n" +
		`"Widget, Deluxe",19.99` + "\n"

	records, total, err := Parse(content, models.FileTypeCSV, csvMappings, 0)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if total != 1 || len(records) != 1 {
		t.Fatalf("got %d records, total %d; want 1, 1", len(records), total)
	}
	if _, ok := records[0]["sku"]; ok {
		t.Errorf("sku key emitted for a row without a sku column: %v", records[0])
	}
	if records[0]["name"] != "Widget, Deluxe" || records[0]["regular_price"] != "19.99" {
		t.Errorf("unexpected record: %v", records[0])
	}
}

func TestParseCSVHeaderOnly(t *testing.T) {
	records, total, err := Parse("title,price\n", models.FileTypeCSV, csvMappings, 0)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 0 || total != 0 {
		t.Errorf("got %d records, total %d; want 0, 0", len(records), total)
	}
}

func TestParseCSVCommaSplitsCategories(t *testing.T) {
	content := "title,categories\nWidget,\"Toys, Games\"\n"
	records, _, err := Parse(content, models.FileTypeCSV, csvMappings, 0)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := records[0]["categories"]; got != `["Toys","Games"]` {
		t.Errorf("categories = %q, want %q", got, `["Toys","Games"]`)
	}
}

func TestCoerceListValue(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{
			name:  "json array re-serialized",
			field: "categories",
			value: ` ["Toys", "Games"] `,
			want:  `["Toys","Games"]`,
		},
		{
			name:  "images json array kept",
			field: "images",
			value: `["a.jpg","b.jpg"]`,
			want:  `["a.jpg","b.jpg"]`,
		},
		{
			name:  "tags comma split",
			field: "tags",
			value: "red, blue",
			want:  `["red","blue"]`,
		},
		{
			name:  "comma split drops empties",
			field: "categories",
			value: "Toys,, Games,",
			want:  `["Toys","Games"]`,
		},
		{
			name:  "single value passes through",
			field: "categories",
			value: "Toys",
			want:  "Toys",
		},
		{
			name:  "images non-json passes through",
			field: "images",
			value: "a.jpg, b.jpg",
			want:  "a.jpg, b.jpg",
		},
		{
			name:  "non-list field untouched",
			field: "name",
			value: "a, b",
			want:  "a, b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coerceListValue(tt.field, tt.value); got != tt.want {
				t.Errorf("coerceListValue(%q, %q) = %q, want %q", tt.field, tt.value, got, tt.want)
			}
		})
	}
}

func TestParseXML(t *testing.T) {
	content := `<catalog>
		<product>
			<title>Widget</title>
			<price>9.99</price>
		</product>
		<product>
			<title>Gadget</title>
			<price>4.99</price>
		</product>
	</catalog>`

	records, total, err := Parse(content, models.FileTypeXML, csvMappings, 0)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if records[0]["name"] != "Widget" || records[1]["regular_price"] != "4.99" {
		t.Errorf("unexpected records: %v", records)
	}
}

func TestParseXMLMalformed(t *testing.T) {
	records, total, err := Parse("<catalog><product>", models.FileTypeXML, csvMappings, 0)
	if err == nil {
		t.Fatal("expected error for malformed xml")
	}
	if len(records) != 0 || total != 0 {
		t.Errorf("got %d records, total %d; want 0, 0", len(records), total)
	}
}
