package repo

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"woodoctor/pkg/models"
)

type MappingRepository struct {
	db *gorm.DB
}

func NewMappingRepository(db *gorm.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// Load returns the saved mapping of an import file as source -> target.
func (r *MappingRepository) Load(userID, fileID uuid.UUID) (map[string]string, error) {
	var rows []models.ImportFileMapping
	err := r.db.Where("import_file_id = ? AND user_id = ?", fileID, userID).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	mappings := make(map[string]string, len(rows))
	for _, row := range rows {
		mappings[row.SourceField] = row.TargetField
	}
	return mappings, nil
}

// Replace swaps the whole mapping of an import file in one transaction.
// Saving is all-or-nothing; a failed insert leaves the old mapping in place.
func (r *MappingRepository) Replace(userID, fileID uuid.UUID, mappings map[string]string) error {
	tx := r.db.Begin()

	if err := tx.Where("import_file_id = ? AND user_id = ?", fileID, userID).
		Delete(&models.ImportFileMapping{}).Error; err != nil {
		tx.Rollback()
		return err
	}

	for source, target := range mappings {
		if target == "" {
			continue
		}
		row := models.ImportFileMapping{
			ImportFileID: fileID,
			SourceField:  source,
			TargetField:  target,
		}
		row.UserID = userID
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}
