package models

import (
	"time"

	"github.com/google/uuid"
)

// PaginationResult represents paginated results
type PaginationResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

// FileType identifies the format of an uploaded import file
type FileType string

const (
	FileTypeCSV FileType = "csv"
	FileTypeXML FileType = "xml"
)

// StoreConnection holds the credentials of one WooCommerce store
type StoreConnection struct {
	BaseUserModel
	StoreName           string     `gorm:"not null" json:"store_name" validate:"required"`
	StoreURL            string     `gorm:"not null" json:"store_url" validate:"required,url"`
	ConsumerKey         string     `gorm:"not null" json:"consumer_key" validate:"required"`
	ConsumerSecret      string     `gorm:"not null" json:"-" validate:"required"`
	IsConnected         bool       `gorm:"default:false;index" json:"is_connected"`
	LastConnectionCheck *time.Time `json:"last_connection_check"`
}

// ImportFile is one uploaded CSV or XML source document. The raw content is
// kept on the row so the parser can re-read it without touching the original
// upload. Immutable after creation.
type ImportFile struct {
	BaseUserModel
	Filename string   `gorm:"not null" json:"filename"`
	Content  string   `gorm:"type:text;not null" json:"-"`
	FileType FileType `gorm:"not null" json:"file_type"`
}

// ImportFileMapping associates one source field of an import file with a
// WooCommerce product field. At most one row per (file, source field); saving
// a mapping replaces all rows for the file.
type ImportFileMapping struct {
	BaseUserModel
	ImportFileID uuid.UUID `gorm:"type:uuid;not null;index" json:"import_file_id"`
	SourceField  string    `gorm:"not null" json:"source_field"`
	TargetField  string    `gorm:"not null" json:"target_field"`
}

// StagedProduct is a parsed-and-normalized product held locally prior to
// upload. Never mutated by the import executor; the upload reads it and
// writes only to the remote store.
type StagedProduct struct {
	BaseUserModel
	ImportFileID     *uuid.UUID `gorm:"type:uuid;index" json:"import_file_id"`
	Name             string     `gorm:"not null" json:"name"`
	Description      string     `gorm:"type:text" json:"description"`
	ShortDescription string     `gorm:"type:text" json:"short_description"`
	RegularPrice     string     `json:"regular_price"`
	SalePrice        string     `json:"sale_price"`
	SKU              string     `gorm:"index" json:"sku"`
	StockQuantity    int        `gorm:"default:0" json:"stock_quantity"`
	Categories       string     `gorm:"type:text" json:"categories"` // JSON array or raw source value
	Tags             string     `gorm:"type:text" json:"tags"`
	Status           string     `gorm:"default:'publish'" json:"status"`
	Type             string     `gorm:"default:'simple'" json:"type"`
	Virtual          bool       `gorm:"default:false" json:"virtual"`
	Downloadable     bool       `gorm:"default:false" json:"downloadable"`
	Images           string     `gorm:"type:text" json:"images"`
}

// ProductField is one entry of a user's WooCommerce field vocabulary, cached
// from the store's schema endpoint (or the fallback list).
type ProductField struct {
	BaseUserModel
	FieldName string `gorm:"not null" json:"field_name"`
}

// SaveMappingRequest represents a mapping-save payload
type SaveMappingRequest struct {
	Mappings map[string]string `json:"mappings" validate:"required"`
}

// BulkPriceUpdateRequest adjusts prices of remote products by a percentage
type BulkPriceUpdateRequest struct {
	Operation  string  `json:"operation" validate:"required,oneof=increase decrease"`
	PriceType  string  `json:"price_type" validate:"required,oneof=regular_price sale_price"`
	Percentage float64 `json:"percentage" validate:"required,gt=0,lte=100"`
}

// GetAllModels returns all models for migration
func GetAllModels() []interface{} {
	return []interface{}{
		&User{},
		&StoreConnection{},
		&ImportFile{},
		&ImportFileMapping{},
		&StagedProduct{},
		&ProductField{},
		&ImportRun{},
	}
}
