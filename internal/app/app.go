package app

import (
	"gorm.io/gorm"

	"woodoctor/internal/auth"
	"woodoctor/internal/repo"
	"woodoctor/internal/services"
)

// Services wires the repositories and services the handlers depend on.
type Services struct {
	DB *gorm.DB

	UserRepo       *repo.UserRepository
	StoreRepo      *repo.StoreRepository
	ImportFileRepo *repo.ImportFileRepository
	MappingRepo    *repo.MappingRepository
	StagedRepo     *repo.StagedProductRepository
	FieldRepo      *repo.ProductFieldRepository
	RunRepo        *repo.ImportRunRepository

	AuthService      *auth.Service
	StoreService     *services.StoreService
	FieldService     *services.FieldService
	ImportService    *services.ImportService
	ImportRunService *services.ImportRunService
	BulkPriceService *services.BulkPriceService
	ProgressBroker   *services.ProgressBroker
}

// NewServices builds the service graph on top of one database handle.
func NewServices(db *gorm.DB) *Services {
	userRepo := repo.NewUserRepository(db)
	storeRepo := repo.NewStoreRepository(db)
	fileRepo := repo.NewImportFileRepository(db)
	mappingRepo := repo.NewMappingRepository(db)
	stagedRepo := repo.NewStagedProductRepository(db)
	fieldRepo := repo.NewProductFieldRepository(db)
	runRepo := repo.NewImportRunRepository(db)

	broker := services.NewProgressBroker()
	fieldService := services.NewFieldService(fieldRepo, storeRepo)

	return &Services{
		DB: db,

		UserRepo:       userRepo,
		StoreRepo:      storeRepo,
		ImportFileRepo: fileRepo,
		MappingRepo:    mappingRepo,
		StagedRepo:     stagedRepo,
		FieldRepo:      fieldRepo,
		RunRepo:        runRepo,

		AuthService:      auth.NewService(userRepo),
		StoreService:     services.NewStoreService(storeRepo),
		FieldService:     fieldService,
		ImportService:    services.NewImportService(fileRepo, mappingRepo, stagedRepo, fieldService),
		ImportRunService: services.NewImportRunService(runRepo, stagedRepo, storeRepo, broker),
		BulkPriceService: services.NewBulkPriceService(storeRepo),
		ProgressBroker:   broker,
	}
}
