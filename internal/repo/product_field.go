package repo

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"woodoctor/pkg/models"
)

type ProductFieldRepository struct {
	db *gorm.DB
}

func NewProductFieldRepository(db *gorm.DB) *ProductFieldRepository {
	return &ProductFieldRepository{db: db}
}

func (r *ProductFieldRepository) ListForUser(userID uuid.UUID) ([]string, error) {
	var rows []models.ProductField
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	fields := make([]string, 0, len(rows))
	for _, row := range rows {
		fields = append(fields, row.FieldName)
	}
	return fields, nil
}

// ReplaceForUser swaps the user's whole field vocabulary in one transaction.
func (r *ProductFieldRepository) ReplaceForUser(userID uuid.UUID, fields []string) error {
	tx := r.db.Begin()

	if err := tx.Where("user_id = ?", userID).Delete(&models.ProductField{}).Error; err != nil {
		tx.Rollback()
		return err
	}

	for _, field := range fields {
		row := models.ProductField{FieldName: field}
		row.UserID = userID
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}
