package repo

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"woodoctor/pkg/models"
)

type ImportRunRepository struct {
	db *gorm.DB
}

func NewImportRunRepository(db *gorm.DB) *ImportRunRepository {
	return &ImportRunRepository{db: db}
}

func (r *ImportRunRepository) Create(run *models.ImportRun) error {
	return r.db.Create(run).Error
}

func (r *ImportRunRepository) GetByID(userID, runID uuid.UUID) (*models.ImportRun, error) {
	var run models.ImportRun
	err := r.db.Where("id = ? AND user_id = ?", runID, userID).First(&run).Error
	return &run, err
}

func (r *ImportRunRepository) ListByUser(userID uuid.UUID, limit int) ([]models.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []models.ImportRun
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

func (r *ImportRunRepository) Update(run *models.ImportRun) error {
	return r.db.Save(run).Error
}
