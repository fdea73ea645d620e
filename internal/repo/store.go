package repo

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"woodoctor/pkg/models"
)

type StoreRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

func (r *StoreRepository) Create(store *models.StoreConnection) error {
	return r.db.Create(store).Error
}

func (r *StoreRepository) GetByID(userID, storeID uuid.UUID) (*models.StoreConnection, error) {
	var store models.StoreConnection
	err := r.db.Where("id = ? AND user_id = ?", storeID, userID).First(&store).Error
	return &store, err
}

func (r *StoreRepository) ListByUser(userID uuid.UUID) ([]models.StoreConnection, error) {
	var stores []models.StoreConnection
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&stores).Error
	return stores, err
}

// GetConnected returns the user's active store, if any.
func (r *StoreRepository) GetConnected(userID uuid.UUID) (*models.StoreConnection, error) {
	var store models.StoreConnection
	err := r.db.Where("user_id = ? AND is_connected = ?", userID, true).First(&store).Error
	return &store, err
}

func (r *StoreRepository) Update(store *models.StoreConnection) error {
	return r.db.Save(store).Error
}

func (r *StoreRepository) Delete(userID, storeID uuid.UUID) error {
	return r.db.Where("id = ? AND user_id = ?", storeID, userID).Delete(&models.StoreConnection{}).Error
}

// SetConnected marks one store as the user's active store. At most one store
// per user has is_connected set.
func (r *StoreRepository) SetConnected(userID, storeID uuid.UUID) error {
	tx := r.db.Begin()

	if err := tx.Model(&models.StoreConnection{}).
		Where("user_id = ?", userID).
		Update("is_connected", false).Error; err != nil {
		tx.Rollback()
		return err
	}

	now := time.Now()
	if err := tx.Model(&models.StoreConnection{}).
		Where("id = ? AND user_id = ?", storeID, userID).
		Updates(map[string]interface{}{
			"is_connected":          true,
			"last_connection_check": now,
		}).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
