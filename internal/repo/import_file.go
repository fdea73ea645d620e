package repo

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"woodoctor/pkg/models"
)

type ImportFileRepository struct {
	db *gorm.DB
}

func NewImportFileRepository(db *gorm.DB) *ImportFileRepository {
	return &ImportFileRepository{db: db}
}

func (r *ImportFileRepository) Create(file *models.ImportFile) error {
	return r.db.Create(file).Error
}

func (r *ImportFileRepository) GetByID(userID, fileID uuid.UUID) (*models.ImportFile, error) {
	var file models.ImportFile
	err := r.db.Where("id = ? AND user_id = ?", fileID, userID).First(&file).Error
	return &file, err
}

// ListByUser returns the user's uploads, newest first, without the raw
// content column.
func (r *ImportFileRepository) ListByUser(userID uuid.UUID) ([]models.ImportFile, error) {
	var files []models.ImportFile
	err := r.db.Select("id", "user_id", "filename", "file_type", "created_at", "updated_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}

func (r *ImportFileRepository) Delete(userID, fileID uuid.UUID) error {
	return r.db.Where("id = ? AND user_id = ?", fileID, userID).Delete(&models.ImportFile{}).Error
}
