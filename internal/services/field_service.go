package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"woodoctor/internal/repo"
	"woodoctor/internal/woocommerce"
	"woodoctor/pkg/models"
)

// SchemaAPI is the slice of the store client the field service needs.
type SchemaAPI interface {
	FetchSchema(ctx context.Context) (*woocommerce.Schema, error)
}

// FieldService maintains each user's mapping-target vocabulary: the product
// field names a source column may map onto. The vocabulary comes from the
// connected store's schema and is cached per user; without a reachable
// schema the built-in default list applies.
type FieldService struct {
	fieldRepo *repo.ProductFieldRepository
	storeRepo *repo.StoreRepository
	newClient func(*models.StoreConnection) SchemaAPI
}

func NewFieldService(fieldRepo *repo.ProductFieldRepository, storeRepo *repo.StoreRepository) *FieldService {
	return &FieldService{
		fieldRepo: fieldRepo,
		storeRepo: storeRepo,
		newClient: func(store *models.StoreConnection) SchemaAPI {
			return woocommerce.NewClient(store)
		},
	}
}

// Fields returns the user's vocabulary, fetching and caching it on first use.
func (s *FieldService) Fields(ctx context.Context, userID uuid.UUID) ([]string, error) {
	cached, err := s.fieldRepo.ListForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product fields: %w", err)
	}
	if len(cached) > 0 {
		return cached, nil
	}
	return s.Refresh(ctx, userID)
}

// Refresh re-fetches the vocabulary from the connected store's schema,
// replacing the cache. Falls back to the default field list when no store is
// connected or the schema yields nothing.
func (s *FieldService) Refresh(ctx context.Context, userID uuid.UUID) ([]string, error) {
	fields := s.fetchSchemaFields(ctx, userID)
	if len(fields) == 0 {
		fields = woocommerce.DefaultProductFields
	}

	if err := s.fieldRepo.ReplaceForUser(userID, fields); err != nil {
		return nil, fmt.Errorf("failed to store product fields: %w", err)
	}
	return fields, nil
}

func (s *FieldService) fetchSchemaFields(ctx context.Context, userID uuid.UUID) []string {
	store, err := s.storeRepo.GetConnected(userID)
	if err != nil {
		log.Debug().Str("user_id", userID.String()).Msg("no connected store, using default fields")
		return nil
	}

	schema, err := s.newClient(store).FetchSchema(ctx)
	if err != nil {
		log.Warn().Err(err).Str("store", store.StoreName).Msg("failed to fetch product schema, using default fields")
		return nil
	}
	return woocommerce.ExtractSchemaFields(schema)
}
