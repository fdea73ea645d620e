package repo

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"woodoctor/pkg/models"
)

// insertBatchSize bounds how many staged products go into one INSERT.
const insertBatchSize = 100

type StagedProductRepository struct {
	db          *gorm.DB
	insertChunk func(batch []models.StagedProduct) error
}

func NewStagedProductRepository(db *gorm.DB) *StagedProductRepository {
	r := &StagedProductRepository{db: db}
	r.insertChunk = func(batch []models.StagedProduct) error {
		return r.db.Create(&batch).Error
	}
	return r
}

func (r *StagedProductRepository) Create(product *models.StagedProduct) error {
	return r.db.Create(product).Error
}

// InsertBatch stores parsed products in chunks. A failed chunk is skipped and
// counted rather than aborting the rest of the insert.
func (r *StagedProductRepository) InsertBatch(products []models.StagedProduct) (inserted int, failed int) {
	for start := 0; start < len(products); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(products) {
			end = len(products)
		}
		batch := products[start:end]
		if err := r.insertChunk(batch); err != nil {
			log.Error().Err(err).Int("batch_start", start).Int("batch_size", len(batch)).
				Msg("failed to insert staged product batch")
			failed += len(batch)
			continue
		}
		inserted += len(batch)
	}
	return inserted, failed
}

func (r *StagedProductRepository) GetByID(userID, productID uuid.UUID) (*models.StagedProduct, error) {
	var product models.StagedProduct
	err := r.db.Where("id = ? AND user_id = ?", productID, userID).First(&product).Error
	return &product, err
}

func (r *StagedProductRepository) ListByUser(userID uuid.UUID, page, perPage int) (*models.PaginationResult[models.StagedProduct], error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 50
	}

	var total int64
	if err := r.db.Model(&models.StagedProduct{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, err
	}

	var products []models.StagedProduct
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return &models.PaginationResult[models.StagedProduct]{
		Data:       products,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

// ListForImport returns the products an import run would upload: those tied
// to the given file, only the orphans (no file) when orphansOnly is set, or
// every staged product of the user otherwise.
func (r *StagedProductRepository) ListForImport(userID uuid.UUID, fileID *uuid.UUID, orphansOnly bool) ([]models.StagedProduct, error) {
	query := r.db.Where("user_id = ?", userID).Order("created_at ASC")
	switch {
	case fileID != nil:
		query = query.Where("import_file_id = ?", *fileID)
	case orphansOnly:
		query = query.Where("import_file_id IS NULL")
	}

	var products []models.StagedProduct
	err := query.Find(&products).Error
	return products, err
}

func (r *StagedProductRepository) CountByFile(userID uuid.UUID, fileID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.StagedProduct{}).
		Where("user_id = ? AND import_file_id = ?", userID, fileID).
		Count(&count).Error
	return count, err
}

func (r *StagedProductRepository) CountOrphans(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.StagedProduct{}).
		Where("user_id = ? AND import_file_id IS NULL", userID).
		Count(&count).Error
	return count, err
}

func (r *StagedProductRepository) Update(product *models.StagedProduct) error {
	return r.db.Save(product).Error
}

func (r *StagedProductRepository) Delete(userID, productID uuid.UUID) error {
	return r.db.Where("id = ? AND user_id = ?", productID, userID).Delete(&models.StagedProduct{}).Error
}

func (r *StagedProductRepository) DeleteAllByUser(userID uuid.UUID) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.StagedProduct{}).Error
}

// ReassignOrphans attaches staged products that have no source file to the
// given file. Returns how many rows moved.
func (r *StagedProductRepository) ReassignOrphans(userID, fileID uuid.UUID) (int64, error) {
	result := r.db.Model(&models.StagedProduct{}).
		Where("user_id = ? AND import_file_id IS NULL", userID).
		Update("import_file_id", fileID)
	return result.RowsAffected, result.Error
}
