package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"woodoctor/internal/importer"
	"woodoctor/internal/repo"
	"woodoctor/internal/woocommerce"
	"woodoctor/pkg/models"
)

const (
	// uploadBatchSize bounds how many records one batch uploads before the
	// configured inter-batch delay applies.
	uploadBatchSize = 100

	// recordYield is the pause between consecutive record uploads so a run
	// never saturates the store API.
	recordYield = 10 * time.Millisecond
)

var (
	ErrRunInProgress   = errors.New("an import is already running for this user")
	ErrDelayRequired   = errors.New("delay between batches must be greater than zero")
	ErrNothingToImport = errors.New("no staged products to import")
	ErrConfirmOrphans  = errors.New("file has no staged products; importing unassigned products requires confirmation")
)

// ProductAPI is the slice of the store client an import run uploads through.
type ProductAPI interface {
	GetProductBySKU(ctx context.Context, sku string) (*woocommerce.Product, error)
	CreateProduct(ctx context.Context, payload *woocommerce.ProductPayload) (*woocommerce.Product, error)
	UpdateProduct(ctx context.Context, productID int64, payload *woocommerce.ProductPayload) (*woocommerce.Product, error)
	EnsureCategory(ctx context.Context, name string) (int64, error)
}

type runPersister interface {
	Update(run *models.ImportRun) error
}

type runStore interface {
	Create(run *models.ImportRun) error
	GetByID(userID, runID uuid.UUID) (*models.ImportRun, error)
	ListByUser(userID uuid.UUID, limit int) ([]models.ImportRun, error)
	Update(run *models.ImportRun) error
}

type stagedSource interface {
	ListForImport(userID uuid.UUID, fileID *uuid.UUID, orphansOnly bool) ([]models.StagedProduct, error)
	CountOrphans(userID uuid.UUID) (int64, error)
}

type storeLookup interface {
	GetByID(userID, storeID uuid.UUID) (*models.StoreConnection, error)
}

// StartRunRequest configures one import run.
type StartRunRequest struct {
	StoreID        uuid.UUID  `json:"store_id" validate:"required"`
	ImportFileID   *uuid.UUID `json:"import_file_id"`
	DelaySeconds   float64    `json:"delay_seconds" validate:"required,gt=0"`
	ConfirmOrphans bool       `json:"confirm_orphans"`
}

// ImportRunService drives import runs: pre-flight validation, the batched
// upload loop, progress publication, and cancellation. One run per user at a
// time.
type ImportRunService struct {
	runRepo    runStore
	stagedRepo stagedSource
	storeRepo  storeLookup
	broker     *ProgressBroker
	newClient  func(*models.StoreConnection) ProductAPI

	mu     sync.Mutex
	active map[uuid.UUID]context.CancelFunc
}

func NewImportRunService(runRepo *repo.ImportRunRepository, stagedRepo *repo.StagedProductRepository, storeRepo *repo.StoreRepository, broker *ProgressBroker) *ImportRunService {
	return &ImportRunService{
		runRepo:    runRepo,
		stagedRepo: stagedRepo,
		storeRepo:  storeRepo,
		broker:     broker,
		newClient: func(store *models.StoreConnection) ProductAPI {
			return woocommerce.NewClient(store)
		},
	}
}

// Start validates the request and launches the run in the background. The
// returned run is in the validating state; progress arrives through the
// broker and the run row.
func (s *ImportRunService) Start(userID uuid.UUID, req StartRunRequest) (*models.ImportRun, error) {
	if req.DelaySeconds <= 0 {
		return nil, ErrDelayRequired
	}

	store, err := s.storeRepo.GetByID(userID, req.StoreID)
	if err != nil {
		return nil, fmt.Errorf("store not found: %w", err)
	}

	products, err := s.selectCandidates(userID, req)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNothingToImport
	}

	ctx, cancel := context.WithCancel(context.Background())
	if !s.tryAcquire(userID, cancel) {
		cancel()
		return nil, ErrRunInProgress
	}

	run := &models.ImportRun{
		StoreConnectionID: store.ID,
		ImportFileID:      req.ImportFileID,
		Status:            models.ImportRunStatusValidating,
		DelaySeconds:      req.DelaySeconds,
		TotalRecords:      len(products),
		TotalBatches:      int(math.Ceil(float64(len(products)) / float64(uploadBatchSize))),
	}
	run.UserID = userID
	if err := s.runRepo.Create(run); err != nil {
		s.release(userID)
		return nil, fmt.Errorf("failed to create import run: %w", err)
	}

	// the executor goroutine owns the run row from here on; hand the caller
	// a snapshot
	client := s.newClient(store)
	snapshot := *run
	go func() {
		defer s.release(userID)
		s.execute(ctx, run, products, client, s.runRepo)
	}()

	return &snapshot, nil
}

// Cancel stops the user's active run. The run finishes the record in flight
// and lands in the aborted state.
func (s *ImportRunService) Cancel(userID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancel, ok := s.active[userID]
	if ok {
		cancel()
	}
	return ok
}

// GetRun returns one run of the user.
func (s *ImportRunService) GetRun(userID, runID uuid.UUID) (*models.ImportRun, error) {
	return s.runRepo.GetByID(userID, runID)
}

// ListRuns returns the user's most recent runs.
func (s *ImportRunService) ListRuns(userID uuid.UUID, limit int) ([]models.ImportRun, error) {
	return s.runRepo.ListByUser(userID, limit)
}

// selectCandidates picks what the run uploads. Without a file filter every
// staged product of the user is a candidate. With a file filter that yields
// nothing, products not tied to any file may stand in, but only after the
// caller explicitly confirmed that fallback.
func (s *ImportRunService) selectCandidates(userID uuid.UUID, req StartRunRequest) ([]models.StagedProduct, error) {
	if req.ImportFileID == nil {
		products, err := s.stagedRepo.ListForImport(userID, nil, false)
		if err != nil {
			return nil, fmt.Errorf("failed to load staged products: %w", err)
		}
		return products, nil
	}

	products, err := s.stagedRepo.ListForImport(userID, req.ImportFileID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load staged products: %w", err)
	}
	if len(products) > 0 {
		return products, nil
	}

	orphans, err := s.stagedRepo.CountOrphans(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count staged products: %w", err)
	}
	if orphans == 0 {
		return nil, nil
	}
	if !req.ConfirmOrphans {
		return nil, ErrConfirmOrphans
	}
	return s.stagedRepo.ListForImport(userID, nil, true)
}

func (s *ImportRunService) tryAcquire(userID uuid.UUID, cancel context.CancelFunc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		s.active = make(map[uuid.UUID]context.CancelFunc)
	}
	if _, busy := s.active[userID]; busy {
		return false
	}
	s.active[userID] = cancel
	return true
}

func (s *ImportRunService) release(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.active[userID]; ok {
		cancel()
		delete(s.active, userID)
	}
}

// execute runs the upload loop. Records go out strictly one at a time; after
// every full batch except the last the loop parks in the delaying state for
// the configured pause. Cancellation is honored between records and during
// delays, never mid-record.
func (s *ImportRunService) execute(ctx context.Context, run *models.ImportRun, products []models.StagedProduct, client ProductAPI, persist runPersister) *models.ImportRunResult {
	now := time.Now()
	run.StartedAt = &now
	run.Status = models.ImportRunStatusRunning
	s.saveAndPublish(run, persist, "")

	delay := time.Duration(run.DelaySeconds * float64(time.Second))
	var failures []models.ImportRunFailure
	canceled := false

loop:
	for i := range products {
		select {
		case <-ctx.Done():
			canceled = true
			break loop
		default:
		}

		product := &products[i]
		run.CurrentBatch = i/uploadBatchSize + 1

		if err := s.uploadProduct(ctx, client, product); err != nil {
			run.ErrorRecords++
			failures = append(failures, models.ImportRunFailure{
				SKU:   product.SKU,
				Name:  product.Name,
				Error: err.Error(),
			})
			log.Warn().Err(err).Str("sku", product.SKU).Str("name", product.Name).
				Msg("failed to upload product")
		} else {
			run.SuccessRecords++
		}
		run.ProcessedRecords++
		s.saveAndPublish(run, persist, product.Name)

		endOfBatch := (i+1)%uploadBatchSize == 0
		lastRecord := i+1 == len(products)
		if endOfBatch && !lastRecord {
			run.Status = models.ImportRunStatusDelaying
			s.saveAndPublish(run, persist, "")

			select {
			case <-ctx.Done():
				canceled = true
				break loop
			case <-time.After(delay):
			}

			run.Status = models.ImportRunStatusRunning
		} else if !lastRecord {
			time.Sleep(recordYield)
		}
	}

	if canceled {
		run.Status = models.ImportRunStatusAborted
	} else {
		run.Status = models.ImportRunStatusCompleted
	}
	done := time.Now()
	run.CompletedAt = &done
	if len(failures) > 0 {
		if encoded, err := json.Marshal(failures); err == nil {
			details := string(encoded)
			run.ErrorDetails = &details
		}
	}
	s.saveAndPublish(run, persist, "")

	log.Info().Str("run_id", run.ID.String()).Str("status", string(run.Status)).
		Int("success", run.SuccessRecords).Int("failed", run.ErrorRecords).
		Msg("import run finished")

	return &models.ImportRunResult{
		RunID:    run.ID,
		Total:    run.TotalRecords,
		Success:  run.SuccessRecords,
		Failed:   run.ErrorRecords,
		Failures: failures,
		Canceled: canceled,
	}
}

// uploadProduct pushes one staged product to the store. An existing remote
// product found under the record's SKU gets updated instead of duplicated.
func (s *ImportRunService) uploadProduct(ctx context.Context, client ProductAPI, product *models.StagedProduct) error {
	payload := s.buildPayload(ctx, client, product)

	existing, err := client.GetProductBySKU(ctx, product.SKU)
	if err != nil {
		log.Warn().Err(err).Str("sku", product.SKU).Msg("sku lookup failed, creating product")
	}

	if existing != nil {
		_, err = client.UpdateProduct(ctx, existing.ID, payload)
		return err
	}
	_, err = client.CreateProduct(ctx, payload)
	return err
}

// buildPayload converts a staged product into the store API shape. Category
// names resolve to remote ids where possible and degrade to by-name
// attachment when resolution fails.
func (s *ImportRunService) buildPayload(ctx context.Context, client ProductAPI, product *models.StagedProduct) *woocommerce.ProductPayload {
	quantity := product.StockQuantity
	payload := &woocommerce.ProductPayload{
		Name:             product.Name,
		Type:             product.Type,
		Status:           product.Status,
		Description:      product.Description,
		ShortDescription: product.ShortDescription,
		SKU:              importer.UniquifySKU(product.SKU),
		RegularPrice:     product.RegularPrice,
		SalePrice:        product.SalePrice,
		StockQuantity:    &quantity,
		Virtual:          product.Virtual,
		Downloadable:     product.Downloadable,
	}

	for _, name := range parseMultiValue(product.Categories) {
		id, err := client.EnsureCategory(ctx, name)
		if err != nil || id == 0 {
			if err != nil {
				log.Warn().Err(err).Str("category", name).Msg("category resolution failed, attaching by name")
			}
			payload.Categories = append(payload.Categories, woocommerce.CategoryRef{Name: name})
			continue
		}
		payload.Categories = append(payload.Categories, woocommerce.CategoryRef{ID: id})
	}

	for _, tag := range parseMultiValue(product.Tags) {
		payload.Tags = append(payload.Tags, woocommerce.TagRef{Name: tag})
	}

	imageBase := os.Getenv("IMAGE_BASE_URL")
	for _, ref := range parseMultiValue(product.Images) {
		if src := importer.ResolveImageURL(imageBase, ref); src != "" {
			payload.Images = append(payload.Images, woocommerce.Image{Src: src})
		}
	}

	return payload
}

// parseMultiValue reads a stored multi-value column in any of its forms:
// a JSON array, newline-separated entries, comma-separated entries, or a
// single bare value.
func parseMultiValue(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if raw[0] == '[' {
		var values []string
		if err := json.Unmarshal([]byte(raw), &values); err == nil {
			out := values[:0]
			for _, v := range values {
				if v = strings.TrimSpace(v); v != "" {
					out = append(out, v)
				}
			}
			return out
		}
	}

	if lines := importer.SplitLines(raw); len(lines) > 1 {
		return lines
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (s *ImportRunService) saveAndPublish(run *models.ImportRun, persist runPersister, currentProduct string) {
	if err := persist.Update(run); err != nil {
		log.Error().Err(err).Str("run_id", run.ID.String()).Msg("failed to persist run progress")
	}

	progress := run.ToProgress()
	progress.CurrentProduct = currentProduct
	s.broker.Publish(run.UserID, progress)
}
