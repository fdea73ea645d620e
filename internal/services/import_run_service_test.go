package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"woodoctor/internal/woocommerce"
	"woodoctor/pkg/models"
)

type fakeProductAPI struct {
	mu         sync.Mutex
	existing   map[string]*woocommerce.Product // keyed by exact sku
	categories map[string]int64
	created    []*woocommerce.ProductPayload
	updated    map[int64]*woocommerce.ProductPayload
	failSKUs   map[string]bool
	catErr     error
}

func newFakeProductAPI() *fakeProductAPI {
	return &fakeProductAPI{
		existing:   make(map[string]*woocommerce.Product),
		categories: make(map[string]int64),
		updated:    make(map[int64]*woocommerce.ProductPayload),
		failSKUs:   make(map[string]bool),
	}
}

func (f *fakeProductAPI) GetProductBySKU(ctx context.Context, sku string) (*woocommerce.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing[sku], nil
}

func (f *fakeProductAPI) CreateProduct(ctx context.Context, payload *woocommerce.ProductPayload) (*woocommerce.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSKUs[payload.Name] {
		return nil, errors.New("store rejected product")
	}
	f.created = append(f.created, payload)
	return &woocommerce.Product{ID: int64(len(f.created)), SKU: payload.SKU}, nil
}

func (f *fakeProductAPI) UpdateProduct(ctx context.Context, productID int64, payload *woocommerce.ProductPayload) (*woocommerce.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[productID] = payload
	return &woocommerce.Product{ID: productID, SKU: payload.SKU}, nil
}

func (f *fakeProductAPI) EnsureCategory(ctx context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.catErr != nil {
		return 0, f.catErr
	}
	if id, ok := f.categories[name]; ok {
		return id, nil
	}
	id := int64(len(f.categories) + 1)
	f.categories[name] = id
	return id, nil
}

type fakeRunPersister struct {
	mu    sync.Mutex
	saves []models.ImportRun
}

func (f *fakeRunPersister) Update(run *models.ImportRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, *run)
	return nil
}

type fakeStagedSource struct {
	all     []models.StagedProduct
	byFile  map[uuid.UUID][]models.StagedProduct
	orphans []models.StagedProduct
}

func (f *fakeStagedSource) ListForImport(userID uuid.UUID, fileID *uuid.UUID, orphansOnly bool) ([]models.StagedProduct, error) {
	switch {
	case fileID != nil:
		return f.byFile[*fileID], nil
	case orphansOnly:
		return f.orphans, nil
	}
	return f.all, nil
}

func (f *fakeStagedSource) CountOrphans(userID uuid.UUID) (int64, error) {
	return int64(len(f.orphans)), nil
}

type fakeRunStore struct {
	mu      sync.Mutex
	created []*models.ImportRun
	saved   []models.ImportRun
}

func (f *fakeRunStore) Create(run *models.ImportRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	run.ID = uuid.New()
	f.created = append(f.created, run)
	return nil
}

func (f *fakeRunStore) GetByID(userID, runID uuid.UUID) (*models.ImportRun, error) {
	return nil, errors.New("not found")
}

func (f *fakeRunStore) ListByUser(userID uuid.UUID, limit int) ([]models.ImportRun, error) {
	return nil, nil
}

func (f *fakeRunStore) Update(run *models.ImportRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, *run)
	return nil
}

func (f *fakeRunStore) lastSaved() (models.ImportRun, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saved) == 0 {
		return models.ImportRun{}, false
	}
	return f.saved[len(f.saved)-1], true
}

type fakeStoreLookup struct {
	store *models.StoreConnection
}

func (f *fakeStoreLookup) GetByID(userID, storeID uuid.UUID) (*models.StoreConnection, error) {
	if f.store == nil {
		return nil, errors.New("record not found")
	}
	return f.store, nil
}

func testRunService() *ImportRunService {
	return &ImportRunService{broker: NewProgressBroker()}
}

func stagedProducts(n int) []models.StagedProduct {
	products := make([]models.StagedProduct, n)
	for i := range products {
		products[i] = models.StagedProduct{
			Name: fmt.Sprintf("Product %d", i),
			SKU:  fmt.Sprintf("P-%d", i),
			Type: "simple",
		}
	}
	return products
}

func testRun(n int) *models.ImportRun {
	run := &models.ImportRun{
		Status:       models.ImportRunStatusValidating,
		DelaySeconds: 0.01,
		TotalRecords: n,
		TotalBatches: (n + uploadBatchSize - 1) / uploadBatchSize,
	}
	run.ID = uuid.New()
	run.UserID = uuid.New()
	return run
}

func TestSelectCandidatesNoFileTakesAllProducts(t *testing.T) {
	fileID := uuid.New()
	svc := testRunService()
	svc.stagedRepo = &fakeStagedSource{
		all: []models.StagedProduct{
			{Name: "From file", ImportFileID: &fileID},
			{Name: "Orphan"},
		},
	}

	products, err := svc.selectCandidates(uuid.New(), StartRunRequest{DelaySeconds: 1})
	if err != nil {
		t.Fatalf("selectCandidates returned error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("got %d candidates, want every staged product", len(products))
	}
}

func TestSelectCandidatesFileFilter(t *testing.T) {
	fileID := uuid.New()
	svc := testRunService()
	svc.stagedRepo = &fakeStagedSource{
		byFile: map[uuid.UUID][]models.StagedProduct{
			fileID: {{Name: "From file", ImportFileID: &fileID}},
		},
		orphans: []models.StagedProduct{{Name: "Orphan"}},
	}

	products, err := svc.selectCandidates(uuid.New(), StartRunRequest{ImportFileID: &fileID, DelaySeconds: 1})
	if err != nil {
		t.Fatalf("selectCandidates returned error: %v", err)
	}
	if len(products) != 1 || products[0].Name != "From file" {
		t.Fatalf("candidates = %+v, want only the file's products", products)
	}
}

func TestSelectCandidatesOrphanFallbackNeedsConfirmation(t *testing.T) {
	fileID := uuid.New()
	svc := testRunService()
	svc.stagedRepo = &fakeStagedSource{
		orphans: []models.StagedProduct{{Name: "Orphan"}},
	}

	_, err := svc.selectCandidates(uuid.New(), StartRunRequest{ImportFileID: &fileID, DelaySeconds: 1})
	if !errors.Is(err, ErrConfirmOrphans) {
		t.Fatalf("err = %v, want ErrConfirmOrphans", err)
	}

	products, err := svc.selectCandidates(uuid.New(), StartRunRequest{
		ImportFileID: &fileID, DelaySeconds: 1, ConfirmOrphans: true,
	})
	if err != nil {
		t.Fatalf("confirmed fallback returned error: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Orphan" {
		t.Fatalf("candidates = %+v, want the orphans", products)
	}
}

func TestSelectCandidatesEmptyFileNoOrphans(t *testing.T) {
	fileID := uuid.New()
	svc := testRunService()
	svc.stagedRepo = &fakeStagedSource{}

	products, err := svc.selectCandidates(uuid.New(), StartRunRequest{ImportFileID: &fileID, DelaySeconds: 1})
	if err != nil {
		t.Fatalf("selectCandidates returned error: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("candidates = %+v, want none", products)
	}
}

func TestStartWhileRunActiveCreatesNoRun(t *testing.T) {
	userID := uuid.New()
	records := &fakeRunStore{}
	svc := &ImportRunService{
		runRepo:    records,
		stagedRepo: &fakeStagedSource{all: stagedProducts(1)},
		storeRepo:  &fakeStoreLookup{store: &models.StoreConnection{}},
		broker:     NewProgressBroker(),
		newClient:  func(*models.StoreConnection) ProductAPI { return newFakeProductAPI() },
	}

	if !svc.tryAcquire(userID, func() {}) {
		t.Fatal("failed to acquire the run lock for the setup")
	}
	defer svc.release(userID)

	_, err := svc.Start(userID, StartRunRequest{StoreID: uuid.New(), DelaySeconds: 0.001})
	if !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("err = %v, want ErrRunInProgress", err)
	}
	if len(records.created) != 0 {
		t.Fatalf("created %d run rows while busy, want none", len(records.created))
	}
}

func TestStartRunsToCompletion(t *testing.T) {
	userID := uuid.New()
	records := &fakeRunStore{}
	api := newFakeProductAPI()
	svc := &ImportRunService{
		runRepo:    records,
		stagedRepo: &fakeStagedSource{all: stagedProducts(2)},
		storeRepo:  &fakeStoreLookup{store: &models.StoreConnection{}},
		broker:     NewProgressBroker(),
		newClient:  func(*models.StoreConnection) ProductAPI { return api },
	}

	run, err := svc.Start(userID, StartRunRequest{StoreID: uuid.New(), DelaySeconds: 0.001})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if run.Status != models.ImportRunStatusValidating {
		t.Errorf("initial status = %s, want validating", run.Status)
	}

	deadline := time.After(2 * time.Second)
	for {
		if last, ok := records.lastSaved(); ok && last.Status == models.ImportRunStatusCompleted {
			if last.SuccessRecords != 2 {
				t.Errorf("success = %d, want 2", last.SuccessRecords)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("run did not complete in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestExecuteUploadsAllRecords(t *testing.T) {
	api := newFakeProductAPI()
	persister := &fakeRunPersister{}
	svc := testRunService()

	products := stagedProducts(3)
	run := testRun(len(products))

	result := svc.execute(context.Background(), run, products, api, persister)

	if result.Success != 3 || result.Failed != 0 {
		t.Fatalf("result = %+v, want 3 successes", result)
	}
	if len(api.created) != 3 {
		t.Fatalf("created %d products, want 3", len(api.created))
	}
	if run.Status != models.ImportRunStatusCompleted {
		t.Errorf("status = %s, want completed", run.Status)
	}
	if run.CompletedAt == nil || run.StartedAt == nil {
		t.Error("expected started and completed timestamps")
	}

	// records go out in staging order
	for i, payload := range api.created {
		if payload.Name != fmt.Sprintf("Product %d", i) {
			t.Errorf("created[%d].Name = %q", i, payload.Name)
		}
	}
}

func TestExecuteRecordsFailuresAndContinues(t *testing.T) {
	api := newFakeProductAPI()
	api.failSKUs["Product 1"] = true
	persister := &fakeRunPersister{}
	svc := testRunService()

	products := stagedProducts(3)
	run := testRun(len(products))

	result := svc.execute(context.Background(), run, products, api, persister)

	if result.Success != 2 || result.Failed != 1 {
		t.Fatalf("result = %+v, want 2 successes and 1 failure", result)
	}
	if len(result.Failures) != 1 || result.Failures[0].Name != "Product 1" {
		t.Errorf("failures = %+v", result.Failures)
	}
	if run.ErrorDetails == nil {
		t.Error("expected error details on the run")
	}
	if run.Status != models.ImportRunStatusCompleted {
		t.Errorf("status = %s, want completed despite failures", run.Status)
	}
}

func TestExecuteCancellation(t *testing.T) {
	api := newFakeProductAPI()
	persister := &fakeRunPersister{}
	svc := testRunService()

	products := stagedProducts(50)
	run := testRun(len(products))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// let a few records through, then cancel
		time.Sleep(25 * time.Millisecond)
		cancel()
	}()

	result := svc.execute(ctx, run, products, api, persister)

	if !result.Canceled {
		t.Fatal("expected canceled result")
	}
	if run.Status != models.ImportRunStatusAborted {
		t.Errorf("status = %s, want aborted", run.Status)
	}
	if result.Success+result.Failed >= len(products) {
		t.Errorf("processed %d records, expected early stop", result.Success+result.Failed)
	}
}

func TestExecuteUpdatesExistingBySKU(t *testing.T) {
	api := newFakeProductAPI()
	api.existing["P-1"] = &woocommerce.Product{ID: 77, SKU: "P-1"}
	persister := &fakeRunPersister{}
	svc := testRunService()

	products := stagedProducts(2)
	run := testRun(len(products))

	svc.execute(context.Background(), run, products, api, persister)

	if _, ok := api.updated[77]; !ok {
		t.Fatal("expected existing product 77 to be updated")
	}
	if len(api.created) != 1 {
		t.Errorf("created %d products, want 1", len(api.created))
	}
}

func TestExecutePublishesProgress(t *testing.T) {
	api := newFakeProductAPI()
	persister := &fakeRunPersister{}
	svc := testRunService()

	products := stagedProducts(2)
	run := testRun(len(products))

	ch, unsubscribe := svc.broker.Subscribe(run.UserID)
	defer unsubscribe()

	svc.execute(context.Background(), run, products, api, persister)

	var snapshots []models.ImportRunProgress
	for {
		select {
		case p := <-ch:
			snapshots = append(snapshots, p)
			continue
		default:
		}
		break
	}

	if len(snapshots) < 3 {
		t.Fatalf("got %d snapshots, want at least initial + per-record + final", len(snapshots))
	}
	last := snapshots[len(snapshots)-1]
	if last.Status != models.ImportRunStatusCompleted || last.ProcessedRecords != 2 {
		t.Errorf("final snapshot = %+v", last)
	}
}

func TestBuildPayload(t *testing.T) {
	api := newFakeProductAPI()
	api.categories["Toys"] = 5
	svc := testRunService()

	product := &models.StagedProduct{
		Name:          "Widget",
		SKU:           "W-1",
		Type:          "simple",
		Status:        "publish",
		StockQuantity: 4,
		Categories:    `["Toys","Games"]`,
		Tags:          "red, blue",
		Images:        "a.jpg\nhttps://cdn.example.com/b.jpg",
	}

	payload := svc.buildPayload(context.Background(), api, product)

	skuRe := regexp.MustCompile(`^W-1-[a-z0-9]{8}$`)
	if !skuRe.MatchString(payload.SKU) {
		t.Errorf("SKU = %q, want uniquified form", payload.SKU)
	}

	wantCats := []woocommerce.CategoryRef{{ID: 5}, {ID: 2}}
	if !reflect.DeepEqual(payload.Categories, wantCats) {
		t.Errorf("Categories = %+v, want %+v", payload.Categories, wantCats)
	}

	wantTags := []woocommerce.TagRef{{Name: "red"}, {Name: "blue"}}
	if !reflect.DeepEqual(payload.Tags, wantTags) {
		t.Errorf("Tags = %+v, want %+v", payload.Tags, wantTags)
	}

	if len(payload.Images) != 2 {
		t.Fatalf("Images = %+v, want 2 entries", payload.Images)
	}
	if payload.Images[1].Src != "https://cdn.example.com/b.jpg" {
		t.Errorf("Images[1] = %+v", payload.Images[1])
	}
}

func TestBuildPayloadCategoryFallbackToName(t *testing.T) {
	api := newFakeProductAPI()
	api.catErr = errors.New("category endpoint down")
	svc := testRunService()

	product := &models.StagedProduct{Name: "Widget", Categories: "Toys"}
	payload := svc.buildPayload(context.Background(), api, product)

	want := []woocommerce.CategoryRef{{Name: "Toys"}}
	if !reflect.DeepEqual(payload.Categories, want) {
		t.Errorf("Categories = %+v, want by-name fallback %+v", payload.Categories, want)
	}
}

func TestParseMultiValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"json array", `["a","b"]`, []string{"a", "b"}},
		{"newlines", "a\nb\n", []string{"a", "b"}},
		{"commas", "a, b", []string{"a", "b"}},
		{"single", "a", []string{"a"}},
		{"empty", "  ", nil},
		{"json with blanks", `["a","",""]`, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseMultiValue(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseMultiValue(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
