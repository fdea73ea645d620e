package importer

import (
	"reflect"
	"regexp"
	"testing"
)

func TestNormalizeProductType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"simple", "simple"},
		{"Variable", "variable"},
		{"variation", "variable"},
		{"has options", "variable"},
		{"external", "external"},
		{"affiliate", "external"},
		{"grouped", "grouped"},
		{"bundle", "grouped"},
		{"", "simple"},
		{"widget", "simple"},
		{"  SIMPLE  ", "simple"},
	}

	for _, tt := range tests {
		if got := NormalizeProductType(tt.in); got != tt.want {
			t.Errorf("NormalizeProductType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeProductStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"publish", "publish"},
		{"pending", "pending"},
		{"private", "private"},
		{"instock", "publish"},
		{"draft", "publish"},
		{"", "publish"},
		{"whatever", "publish"},
		{"  Publish ", "publish"},
	}

	for _, tt := range tests {
		if got := NormalizeProductStatus(tt.in); got != tt.want {
			t.Errorf("NormalizeProductStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCoerceStockQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"10", 10},
		{" 3 ", 3},
		{"", 0},
		{"lots", 0},
		{"-5", 0},
		{"2.5", 0},
	}

	for _, tt := range tests {
		if got := CoerceStockQuantity(tt.in); got != tt.want {
			t.Errorf("CoerceStockQuantity(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("Toys\n\n  Games  \nPuzzles\n")
	want := []string{"Toys", "Games", "Puzzles"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitLines = %v, want %v", got, want)
	}
}

func TestResolveImageURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		ref  string
		want string
	}{
		{
			name: "relative path joined to base",
			base: "https://cdn.example.com/img",
			ref:  "widget.jpg",
			want: "https://cdn.example.com/img/widget.jpg",
		},
		{
			name: "leading slash stripped",
			base: "https://cdn.example.com/img",
			ref:  "/widget.jpg",
			want: "https://cdn.example.com/img/widget.jpg",
		},
		{
			name: "absolute url passes through",
			base: "https://cdn.example.com/img",
			ref:  "https://other.example.com/a.jpg",
			want: "https://other.example.com/a.jpg",
		},
		{
			name: "empty base uses default",
			base: "",
			ref:  "widget.jpg",
			want: DefaultImageBaseURL + "/widget.jpg",
		},
		{
			name: "empty ref stays empty",
			base: "https://cdn.example.com/img",
			ref:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveImageURL(tt.base, tt.ref); got != tt.want {
				t.Errorf("ResolveImageURL(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
			}
		})
	}
}

func TestUniquifySKU(t *testing.T) {
	re := regexp.MustCompile(`^WID-1-[a-z0-9]{8}$`)
	got := UniquifySKU("WID-1")
	if !re.MatchString(got) {
		t.Errorf("UniquifySKU(%q) = %q, want match for %s", "WID-1", got, re)
	}

	bare := regexp.MustCompile(`^[a-z0-9]{8}$`)
	got = UniquifySKU("  ")
	if !bare.MatchString(got) {
		t.Errorf("UniquifySKU(blank) = %q, want bare 8-char token", got)
	}
}

func TestBuildStagedProduct(t *testing.T) {
	record := map[string]string{
		"name":           "  Widget  ",
		"regular_price":  "19.99",
		"sku":            "W-1",
		"stock_quantity": "7",
		"status":         "instock",
		"type":           "variation",
		"virtual":        "yes",
	}

	p, err := BuildStagedProduct(record)
	if err != nil {
		t.Fatalf("BuildStagedProduct returned error: %v", err)
	}
	if p.Name != "Widget" {
		t.Errorf("Name = %q, want %q", p.Name, "Widget")
	}
	if p.StockQuantity != 7 {
		t.Errorf("StockQuantity = %d, want 7", p.StockQuantity)
	}
	if p.Status != "publish" {
		t.Errorf("Status = %q, want publish", p.Status)
	}
	if p.Type != "variable" {
		t.Errorf("Type = %q, want variable", p.Type)
	}
	if !p.Virtual {
		t.Error("Virtual = false, want true")
	}
	if p.Downloadable {
		t.Error("Downloadable = true, want false")
	}
}

func TestBuildStagedProductMissingName(t *testing.T) {
	if _, err := BuildStagedProduct(map[string]string{"sku": "W-1"}); err == nil {
		t.Fatal("expected error for record without name")
	}
}
