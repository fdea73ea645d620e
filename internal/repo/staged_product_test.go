package repo

import (
	"errors"
	"testing"

	"woodoctor/pkg/models"
)

func TestInsertBatchPartialFailure(t *testing.T) {
	var sizes []int
	r := &StagedProductRepository{}
	r.insertChunk = func(batch []models.StagedProduct) error {
		sizes = append(sizes, len(batch))
		if len(sizes) == 2 {
			return errors.New("insert failed")
		}
		return nil
	}

	products := make([]models.StagedProduct, 250)
	inserted, failed := r.InsertBatch(products)

	if len(sizes) != 3 || sizes[0] != 100 || sizes[1] != 100 || sizes[2] != 50 {
		t.Fatalf("chunk sizes = %v, want [100 100 50]", sizes)
	}
	if inserted != 150 {
		t.Errorf("inserted = %d, want 150", inserted)
	}
	if failed != 100 {
		t.Errorf("failed = %d, want 100", failed)
	}
}

func TestInsertBatchAllSucceed(t *testing.T) {
	calls := 0
	r := &StagedProductRepository{}
	r.insertChunk = func(batch []models.StagedProduct) error {
		calls++
		return nil
	}

	inserted, failed := r.InsertBatch(make([]models.StagedProduct, 120))

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if inserted != 120 || failed != 0 {
		t.Errorf("inserted, failed = %d, %d; want 120, 0", inserted, failed)
	}
}

func TestInsertBatchEmpty(t *testing.T) {
	r := &StagedProductRepository{}
	r.insertChunk = func(batch []models.StagedProduct) error {
		t.Fatal("insertChunk called for an empty set")
		return nil
	}

	if inserted, failed := r.InsertBatch(nil); inserted != 0 || failed != 0 {
		t.Errorf("inserted, failed = %d, %d; want 0, 0", inserted, failed)
	}
}
