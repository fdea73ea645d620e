package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"woodoctor/internal/repo"
	"woodoctor/internal/woocommerce"
	"woodoctor/pkg/models"
)

// StoreService manages WooCommerce store connections and hands out API
// clients for the user's active store.
type StoreService struct {
	storeRepo *repo.StoreRepository
}

func NewStoreService(storeRepo *repo.StoreRepository) *StoreService {
	return &StoreService{storeRepo: storeRepo}
}

func (s *StoreService) Create(userID uuid.UUID, store *models.StoreConnection) error {
	store.UserID = userID
	store.IsConnected = false
	return s.storeRepo.Create(store)
}

func (s *StoreService) List(userID uuid.UUID) ([]models.StoreConnection, error) {
	return s.storeRepo.ListByUser(userID)
}

func (s *StoreService) Get(userID, storeID uuid.UUID) (*models.StoreConnection, error) {
	return s.storeRepo.GetByID(userID, storeID)
}

func (s *StoreService) Update(userID uuid.UUID, store *models.StoreConnection) error {
	existing, err := s.storeRepo.GetByID(userID, store.ID)
	if err != nil {
		return fmt.Errorf("store not found: %w", err)
	}

	existing.StoreName = store.StoreName
	existing.StoreURL = store.StoreURL
	existing.ConsumerKey = store.ConsumerKey
	if store.ConsumerSecret != "" {
		existing.ConsumerSecret = store.ConsumerSecret
	}
	*store = *existing
	return s.storeRepo.Update(existing)
}

func (s *StoreService) Delete(userID, storeID uuid.UUID) error {
	return s.storeRepo.Delete(userID, storeID)
}

// TestConnection checks the store's credentials against its API and records
// the check time.
func (s *StoreService) TestConnection(ctx context.Context, userID, storeID uuid.UUID) error {
	store, err := s.storeRepo.GetByID(userID, storeID)
	if err != nil {
		return fmt.Errorf("store not found: %w", err)
	}

	if err := woocommerce.NewClient(store).TestConnection(ctx); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}

	now := time.Now()
	store.LastConnectionCheck = &now
	if err := s.storeRepo.Update(store); err != nil {
		log.Warn().Err(err).Msg("failed to record connection check")
	}
	return nil
}

// Connect verifies the store and makes it the user's single active store.
func (s *StoreService) Connect(ctx context.Context, userID, storeID uuid.UUID) error {
	if err := s.TestConnection(ctx, userID, storeID); err != nil {
		return err
	}
	return s.storeRepo.SetConnected(userID, storeID)
}

// ClientForUser returns an API client for the user's connected store.
func (s *StoreService) ClientForUser(userID uuid.UUID) (*woocommerce.Client, error) {
	store, err := s.storeRepo.GetConnected(userID)
	if err != nil {
		return nil, fmt.Errorf("no connected store: %w", err)
	}
	return woocommerce.NewClient(store), nil
}
