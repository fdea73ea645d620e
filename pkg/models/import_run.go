package models

import (
	"time"

	"github.com/google/uuid"
)

type ImportRunStatus string

const (
	ImportRunStatusPending    ImportRunStatus = "pending"
	ImportRunStatusValidating ImportRunStatus = "validating"
	ImportRunStatusRunning    ImportRunStatus = "running"
	ImportRunStatusDelaying   ImportRunStatus = "delaying"
	ImportRunStatusCompleted  ImportRunStatus = "completed"
	ImportRunStatusAborted    ImportRunStatus = "aborted"
)

// ImportRun is the persisted record of one upload run of staged products to a
// WooCommerce store. Failures are recorded per record; only pre-flight
// validation aborts a run.
type ImportRun struct {
	BaseUserModel
	StoreConnectionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"store_connection_id"`
	ImportFileID      *uuid.UUID      `gorm:"type:uuid;index" json:"import_file_id"`
	Status            ImportRunStatus `gorm:"not null;default:'pending'" json:"status"`
	DelaySeconds      float64         `gorm:"not null" json:"delay_seconds"`
	TotalRecords      int             `gorm:"default:0" json:"total_records"`
	ProcessedRecords  int             `gorm:"default:0" json:"processed_records"`
	SuccessRecords    int             `gorm:"default:0" json:"success_records"`
	ErrorRecords      int             `gorm:"default:0" json:"error_records"`
	CurrentBatch      int             `gorm:"default:0" json:"current_batch"`
	TotalBatches      int             `gorm:"default:0" json:"total_batches"`
	ErrorDetails      *string         `gorm:"type:jsonb" json:"error_details,omitempty"`
	StartedAt         *time.Time      `json:"started_at"`
	CompletedAt       *time.Time      `json:"completed_at"`
}

// ImportRunProgress is the progress snapshot published after every record
type ImportRunProgress struct {
	RunID            uuid.UUID       `json:"run_id"`
	Status           ImportRunStatus `json:"status"`
	TotalRecords     int             `json:"total_records"`
	ProcessedRecords int             `json:"processed_records"`
	RemainingRecords int             `json:"remaining_records"`
	SuccessRecords   int             `json:"success_records"`
	ErrorRecords     int             `json:"error_records"`
	CurrentBatch     int             `json:"current_batch"`
	TotalBatches     int             `json:"total_batches"`
	CurrentProduct   string          `json:"current_product,omitempty"`
	Progress         float64         `json:"progress"` // 0-100
	Message          string          `json:"message,omitempty"`
}

// ImportRunFailure identifies one record that failed to upload
type ImportRunFailure struct {
	SKU   string `json:"sku"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ImportRunResult is the final summary returned when a run finishes
type ImportRunResult struct {
	RunID    uuid.UUID          `json:"run_id"`
	Total    int                `json:"total"`
	Success  int                `json:"success"`
	Failed   int                `json:"failed"`
	Failures []ImportRunFailure `json:"failures,omitempty"`
	Canceled bool               `json:"canceled"`
}

// CalculateProgress calculates the progress percentage
func (r *ImportRun) CalculateProgress() float64 {
	if r.TotalRecords == 0 {
		return 0
	}
	return float64(r.ProcessedRecords) / float64(r.TotalRecords) * 100
}

// ToProgress converts the run into a progress snapshot
func (r *ImportRun) ToProgress() ImportRunProgress {
	return ImportRunProgress{
		RunID:            r.ID,
		Status:           r.Status,
		TotalRecords:     r.TotalRecords,
		ProcessedRecords: r.ProcessedRecords,
		RemainingRecords: r.TotalRecords - r.ProcessedRecords,
		SuccessRecords:   r.SuccessRecords,
		ErrorRecords:     r.ErrorRecords,
		CurrentBatch:     r.CurrentBatch,
		TotalBatches:     r.TotalBatches,
		Progress:         r.CalculateProgress(),
	}
}
