package woocommerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"woodoctor/pkg/models"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(&models.StoreConnection{
		StoreURL:       server.URL,
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
	})
	// keep test retries fast
	client.retrier = NewRetrier(&RetryConfig{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		BackoffFactor:  2.0,
		RetryableCodes: DefaultRetryConfig().RetryableCodes,
	})
	return client, server
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestTestConnectionSendsBasicAuth(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "ck_test" || pass != "cs_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/wp-json/wc/v3/products" {
			t.Errorf("path = %q", r.URL.Path)
		}
		writeJSON(t, w, []Product{})
	}))

	if err := client.TestConnection(context.Background()); err != nil {
		t.Fatalf("TestConnection returned error: %v", err)
	}
}

func TestGetProductBySKUExactMatch(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sku") == "W-1" {
			writeJSON(t, w, []Product{{ID: 42, SKU: "W-1", Name: "Widget"}})
			return
		}
		writeJSON(t, w, []Product{})
	}))

	p, err := client.GetProductBySKU(context.Background(), "W-1")
	if err != nil {
		t.Fatalf("GetProductBySKU returned error: %v", err)
	}
	if p == nil || p.ID != 42 {
		t.Fatalf("got %+v, want product 42", p)
	}
}

func TestGetProductBySKUSuffixScan(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sku") != "" {
			writeJSON(t, w, []Product{})
			return
		}
		writeJSON(t, w, []Product{
			{ID: 1, SKU: "other"},
			{ID: 2, SKU: "W-1-ab12cd34"},
			{ID: 3, SKU: "W-1-toolongsuffix"},
		})
	}))

	p, err := client.GetProductBySKU(context.Background(), "W-1")
	if err != nil {
		t.Fatalf("GetProductBySKU returned error: %v", err)
	}
	if p == nil || p.ID != 2 {
		t.Fatalf("got %+v, want suffixed product 2", p)
	}
}

func TestGetProductBySKUNotFound(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []Product{})
	}))

	p, err := client.GetProductBySKU(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetProductBySKU returned error: %v", err)
	}
	if p != nil {
		t.Fatalf("got %+v, want nil", p)
	}
}

func TestGetProductBySKUBlank(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for blank sku")
	}))

	p, err := client.GetProductBySKU(context.Background(), "  ")
	if err != nil || p != nil {
		t.Fatalf("got %+v, %v; want nil, nil", p, err)
	}
}

func TestCreateProductAppliesGuards(t *testing.T) {
	var received map[string]interface{}
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		writeJSON(t, w, Product{ID: 7})
	}))

	qty := 5
	payload := &ProductPayload{
		Name:          "Widget",
		Type:          "variation",
		Status:        "instock",
		StockQuantity: &qty,
	}
	created, err := client.CreateProduct(context.Background(), payload)
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}
	if created.ID != 7 {
		t.Errorf("created.ID = %d, want 7", created.ID)
	}

	if received["stock_status"] != "instock" {
		t.Errorf("stock_status = %v, want instock", received["stock_status"])
	}
	if received["status"] != "publish" {
		t.Errorf("status = %v, want publish", received["status"])
	}
	if received["type"] != "variable" {
		t.Errorf("type = %v, want variable", received["type"])
	}
	if received["manage_stock"] != true {
		t.Errorf("manage_stock = %v, want true", received["manage_stock"])
	}
	if received["backorders"] != "no" {
		t.Errorf("backorders = %v, want no", received["backorders"])
	}
}

func TestCreateProductOutOfStockBecomesDraft(t *testing.T) {
	var received map[string]interface{}
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		writeJSON(t, w, Product{ID: 8})
	}))

	qty := 0
	payload := &ProductPayload{Name: "Widget", Status: "outofstock", StockQuantity: &qty}
	if _, err := client.CreateProduct(context.Background(), payload); err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}
	if received["status"] != "draft" {
		t.Errorf("status = %v, want draft", received["status"])
	}
	if received["stock_status"] != "outofstock" {
		t.Errorf("stock_status = %v, want outofstock", received["stock_status"])
	}
}

func TestEnsureCategory(t *testing.T) {
	var createdName string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("search") == "Toys" {
				writeJSON(t, w, []Category{{ID: 11, Name: "toys"}})
				return
			}
			writeJSON(t, w, []Category{})
		case http.MethodPost:
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			createdName = body["name"]
			writeJSON(t, w, Category{ID: 99, Name: createdName})
		}
	}))

	// case-insensitive match on an existing category
	id, err := client.EnsureCategory(context.Background(), "Toys")
	if err != nil {
		t.Fatalf("EnsureCategory returned error: %v", err)
	}
	if id != 11 {
		t.Errorf("id = %d, want 11", id)
	}

	// unknown category gets created
	id, err = client.EnsureCategory(context.Background(), " Games ")
	if err != nil {
		t.Fatalf("EnsureCategory returned error: %v", err)
	}
	if id != 99 || createdName != "Games" {
		t.Errorf("id = %d, created %q; want 99, Games", id, createdName)
	}

	// blank name is a no-op
	id, err = client.EnsureCategory(context.Background(), "  ")
	if err != nil || id != 0 {
		t.Errorf("blank name: id = %d, err = %v; want 0, nil", id, err)
	}
}

func TestDoRetriesTransientFailures(t *testing.T) {
	attempts := 0
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(t, w, []Product{})
	}))

	if err := client.TestConnection(context.Background()); err != nil {
		t.Fatalf("TestConnection returned error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDoSurfacesAPIError(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(t, w, map[string]string{"code": "rest_invalid", "message": "bad sku"})
	}))

	_, err := client.CreateProduct(context.Background(), &ProductPayload{Name: "x"})
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "bad sku" {
		t.Errorf("got %+v", apiErr)
	}
}

func TestFetchAllProductsPages(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			writeJSON(t, w, []Product{{ID: 1}, {ID: 2}})
		case "2":
			writeJSON(t, w, []Product{{ID: 3}})
		default:
			writeJSON(t, w, []Product{})
		}
	}))

	products, err := client.FetchAllProducts(context.Background())
	if err != nil {
		t.Fatalf("FetchAllProducts returned error: %v", err)
	}
	if len(products) != 3 {
		t.Errorf("len(products) = %d, want 3", len(products))
	}
}
