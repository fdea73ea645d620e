package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"woodoctor/internal/woocommerce"
	"woodoctor/pkg/models"
)

func TestAdjustPrice(t *testing.T) {
	tests := []struct {
		name       string
		price      string
		operation  string
		percentage float64
		want       string
		ok         bool
	}{
		{"increase", "100.00", "increase", 10, "110.00", true},
		{"decrease", "100.00", "decrease", 25, "75.00", true},
		{"full decrease floors at zero", "10.00", "decrease", 100, "0.00", true},
		{"rounding", "19.99", "increase", 10, "21.99", true},
		{"empty price skipped", "", "increase", 10, "", false},
		{"non-numeric skipped", "n/a", "increase", 10, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AdjustPrice(tt.price, tt.operation, tt.percentage)
			if ok != tt.ok || got != tt.want {
				t.Errorf("AdjustPrice(%q, %q, %v) = %q, %v; want %q, %v",
					tt.price, tt.operation, tt.percentage, got, ok, tt.want, tt.ok)
			}
		})
	}
}

type fakeStoreSource struct {
	store *models.StoreConnection
	err   error
}

func (f *fakeStoreSource) GetConnected(userID uuid.UUID) (*models.StoreConnection, error) {
	return f.store, f.err
}

type fakeCatalogAPI struct {
	products []woocommerce.Product
	updates  map[int64]map[string]interface{}
	failIDs  map[int64]bool
}

func (f *fakeCatalogAPI) FetchAllProducts(ctx context.Context) ([]woocommerce.Product, error) {
	return f.products, nil
}

func (f *fakeCatalogAPI) UpdateProductFields(ctx context.Context, productID int64, fields map[string]interface{}) (*woocommerce.Product, error) {
	if f.failIDs[productID] {
		return nil, errors.New("update rejected")
	}
	if f.updates == nil {
		f.updates = make(map[int64]map[string]interface{})
	}
	f.updates[productID] = fields
	return &woocommerce.Product{ID: productID}, nil
}

func TestUpdatePrices(t *testing.T) {
	api := &fakeCatalogAPI{
		products: []woocommerce.Product{
			{ID: 1, RegularPrice: "100.00"},
			{ID: 2, RegularPrice: ""},
			{ID: 3, RegularPrice: "50.00"},
		},
		failIDs: map[int64]bool{3: true},
	}
	svc := &BulkPriceService{
		storeRepo: &fakeStoreSource{store: &models.StoreConnection{}},
		newClient: func(*models.StoreConnection) CatalogAPI { return api },
	}

	result, err := svc.UpdatePrices(context.Background(), uuid.New(), models.BulkPriceUpdateRequest{
		Operation:  "increase",
		PriceType:  "regular_price",
		Percentage: 10,
	})
	if err != nil {
		t.Fatalf("UpdatePrices returned error: %v", err)
	}

	if result.Total != 3 || result.Updated != 1 || result.Skipped != 1 || result.Failed != 1 {
		t.Fatalf("result = %+v", result)
	}
	if api.updates[1]["regular_price"] != "110.00" {
		t.Errorf("product 1 update = %v", api.updates[1])
	}
}

func TestUpdatePricesPacesCalls(t *testing.T) {
	api := &fakeCatalogAPI{
		products: []woocommerce.Product{
			{ID: 1, RegularPrice: "10.00"},
			{ID: 2, RegularPrice: "20.00"},
			{ID: 3, RegularPrice: "30.00"},
		},
	}
	svc := &BulkPriceService{
		storeRepo: &fakeStoreSource{store: &models.StoreConnection{}},
		newClient: func(*models.StoreConnection) CatalogAPI { return api },
		pause:     15 * time.Millisecond,
	}

	start := time.Now()
	result, err := svc.UpdatePrices(context.Background(), uuid.New(), models.BulkPriceUpdateRequest{
		Operation: "increase", PriceType: "regular_price", Percentage: 10,
	})
	if err != nil {
		t.Fatalf("UpdatePrices returned error: %v", err)
	}
	if result.Updated != 3 {
		t.Fatalf("updated = %d, want 3", result.Updated)
	}

	// two pauses between three products
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("sweep took %v, expected pacing between updates", elapsed)
	}
}

func TestUpdatePricesNoConnectedStore(t *testing.T) {
	svc := &BulkPriceService{
		storeRepo: &fakeStoreSource{err: errors.New("record not found")},
	}

	_, err := svc.UpdatePrices(context.Background(), uuid.New(), models.BulkPriceUpdateRequest{
		Operation: "increase", PriceType: "regular_price", Percentage: 10,
	})
	if err == nil {
		t.Fatal("expected error without a connected store")
	}
}
