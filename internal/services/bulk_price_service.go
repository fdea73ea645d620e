package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"woodoctor/internal/repo"
	"woodoctor/internal/woocommerce"
	"woodoctor/pkg/models"
)

// CatalogAPI is the slice of the store client bulk operations work through.
type CatalogAPI interface {
	FetchAllProducts(ctx context.Context) ([]woocommerce.Product, error)
	UpdateProductFields(ctx context.Context, productID int64, fields map[string]interface{}) (*woocommerce.Product, error)
}

// BulkPriceResult reports how a bulk price update went.
type BulkPriceResult struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type connectedStoreSource interface {
	GetConnected(userID uuid.UUID) (*models.StoreConnection, error)
}

// BulkPriceService applies percentage price adjustments across the whole
// remote catalog of the user's connected store.
type BulkPriceService struct {
	storeRepo connectedStoreSource
	newClient func(*models.StoreConnection) CatalogAPI
	pause     time.Duration
}

func NewBulkPriceService(storeRepo *repo.StoreRepository) *BulkPriceService {
	return &BulkPriceService{
		storeRepo: storeRepo,
		newClient: func(store *models.StoreConnection) CatalogAPI {
			return woocommerce.NewClient(store)
		},
		pause: recordYield,
	}
}

// UpdatePrices adjusts the requested price field of every remote product by
// the given percentage. Products without a parseable price are skipped;
// failed updates are counted and do not stop the sweep. Update calls are
// paced with a short pause so the sweep never saturates the store API.
func (s *BulkPriceService) UpdatePrices(ctx context.Context, userID uuid.UUID, req models.BulkPriceUpdateRequest) (*BulkPriceResult, error) {
	store, err := s.storeRepo.GetConnected(userID)
	if err != nil {
		return nil, fmt.Errorf("no connected store: %w", err)
	}

	client := s.newClient(store)
	products, err := client.FetchAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	result := &BulkPriceResult{Total: len(products)}
	for i := range products {
		newPrice, ok := AdjustPrice(priceField(&products[i], req.PriceType), req.Operation, req.Percentage)
		if !ok {
			result.Skipped++
			continue
		}

		fields := map[string]interface{}{req.PriceType: newPrice}
		if _, err := client.UpdateProductFields(ctx, products[i].ID, fields); err != nil {
			result.Failed++
			log.Warn().Err(err).Int64("product_id", products[i].ID).Msg("failed to update product price")
		} else {
			result.Updated++
		}

		if i+1 < len(products) {
			time.Sleep(s.pause)
		}
	}

	log.Info().Str("user_id", userID.String()).Str("operation", req.Operation).
		Str("price_type", req.PriceType).Float64("percentage", req.Percentage).
		Int("updated", result.Updated).Int("skipped", result.Skipped).Int("failed", result.Failed).
		Msg("bulk price update finished")
	return result, nil
}

func priceField(p *woocommerce.Product, priceType string) string {
	if priceType == "sale_price" {
		return p.SalePrice
	}
	return p.RegularPrice
}

// AdjustPrice applies a percentage increase or decrease to a price string.
// Returns false for prices that are empty or not numeric.
func AdjustPrice(price, operation string, percentage float64) (string, bool) {
	value, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return "", false
	}

	factor := 1 + percentage/100
	if operation == "decrease" {
		factor = 1 - percentage/100
	}

	adjusted := value * factor
	if adjusted < 0 {
		adjusted = 0
	}
	return strconv.FormatFloat(adjusted, 'f', 2, 64), true
}
