package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"woodoctor/internal/importer"
	"woodoctor/internal/repo"
	"woodoctor/pkg/models"
)

var (
	ErrEmptyFile           = errors.New("file is empty")
	ErrUnsupportedFileType = errors.New("only csv and xml files are supported")
	ErrNoMapping           = errors.New("no field mapping saved for this file")
)

// ImportService covers the staging side of the pipeline: uploads, field
// detection, mapping, preview, and parsing source files into staged products.
type ImportService struct {
	fileRepo    *repo.ImportFileRepository
	mappingRepo *repo.MappingRepository
	stagedRepo  *repo.StagedProductRepository
	fieldSvc    *FieldService
}

func NewImportService(fileRepo *repo.ImportFileRepository, mappingRepo *repo.MappingRepository, stagedRepo *repo.StagedProductRepository, fieldSvc *FieldService) *ImportService {
	return &ImportService{
		fileRepo:    fileRepo,
		mappingRepo: mappingRepo,
		stagedRepo:  stagedRepo,
		fieldSvc:    fieldSvc,
	}
}

// UploadFile stores a source document. The format comes from the file
// extension.
func (s *ImportService) UploadFile(userID uuid.UUID, filename, content string) (*models.ImportFile, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyFile
	}

	var fileType models.FileType
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		fileType = models.FileTypeCSV
	case ".xml":
		fileType = models.FileTypeXML
	default:
		return nil, ErrUnsupportedFileType
	}

	file := &models.ImportFile{
		Filename: filename,
		Content:  content,
		FileType: fileType,
	}
	file.UserID = userID

	if err := s.fileRepo.Create(file); err != nil {
		return nil, fmt.Errorf("failed to store import file: %w", err)
	}

	log.Info().Str("user_id", userID.String()).Str("filename", filename).
		Str("file_type", string(fileType)).Msg("import file uploaded")
	return file, nil
}

// DetectFields returns the source field names found in the file.
func (s *ImportService) DetectFields(userID, fileID uuid.UUID) ([]string, error) {
	file, err := s.fileRepo.GetByID(userID, fileID)
	if err != nil {
		return nil, fmt.Errorf("import file not found: %w", err)
	}
	return importer.DetectFields(file.Content, file.FileType), nil
}

// AutoMap proposes a mapping for the file's detected fields against the
// user's field vocabulary, keeping what was already saved.
func (s *ImportService) AutoMap(ctx context.Context, userID, fileID uuid.UUID) (map[string]string, error) {
	detected, err := s.DetectFields(userID, fileID)
	if err != nil {
		return nil, err
	}

	vocabulary, err := s.fieldSvc.Fields(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.mappingRepo.Load(userID, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping: %w", err)
	}

	return importer.AutoMap(detected, vocabulary, existing), nil
}

// GetMapping returns the saved mapping of a file.
func (s *ImportService) GetMapping(userID, fileID uuid.UUID) (map[string]string, error) {
	if _, err := s.fileRepo.GetByID(userID, fileID); err != nil {
		return nil, fmt.Errorf("import file not found: %w", err)
	}
	return s.mappingRepo.Load(userID, fileID)
}

// SaveMapping replaces the file's mapping. Every target must belong to the
// user's field vocabulary; "type" is always accepted.
func (s *ImportService) SaveMapping(ctx context.Context, userID, fileID uuid.UUID, mappings map[string]string) error {
	if _, err := s.fileRepo.GetByID(userID, fileID); err != nil {
		return fmt.Errorf("import file not found: %w", err)
	}

	vocabulary, err := s.fieldSvc.Fields(ctx, userID)
	if err != nil {
		return err
	}
	valid := make(map[string]bool, len(vocabulary)+1)
	for _, field := range vocabulary {
		valid[field] = true
	}
	valid["type"] = true

	for source, target := range mappings {
		if target != "" && !valid[target] {
			return fmt.Errorf("unknown target field %q for source %q", target, source)
		}
	}

	return s.mappingRepo.Replace(userID, fileID, mappings)
}

// Preview parses the file with its saved mapping, capped at a handful of
// records. The returned total always counts the whole file.
func (s *ImportService) Preview(userID, fileID uuid.UUID) ([]map[string]string, int, error) {
	file, mappings, err := s.fileAndMapping(userID, fileID)
	if err != nil {
		return nil, 0, err
	}
	return importer.Parse(file.Content, file.FileType, mappings, importer.PreviewLimit)
}

// StageResult reports the outcome of staging a file.
type StageResult struct {
	Total      int `json:"total"`
	Staged     int `json:"staged"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
	Reassigned int `json:"reassigned"`
}

// Stage parses the whole file, normalizes every record, and stores the
// result as staged products belonging to the file. Records without a name
// are skipped and counted. Existing orphaned staged products are adopted
// into the file afterwards.
func (s *ImportService) Stage(userID, fileID uuid.UUID) (*StageResult, error) {
	file, mappings, err := s.fileAndMapping(userID, fileID)
	if err != nil {
		return nil, err
	}

	records, total, err := importer.Parse(file.Content, file.FileType, mappings, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	result := &StageResult{Total: total}
	products := make([]models.StagedProduct, 0, len(records))
	for _, record := range records {
		product, err := importer.BuildStagedProduct(record)
		if err != nil {
			result.Skipped++
			continue
		}
		product.UserID = userID
		id := fileID
		product.ImportFileID = &id
		products = append(products, *product)
	}

	inserted, failed := s.stagedRepo.InsertBatch(products)
	result.Staged = inserted
	result.Failed = failed

	reassigned, err := s.stagedRepo.ReassignOrphans(userID, fileID)
	if err != nil {
		log.Warn().Err(err).Msg("failed to reassign orphaned staged products")
	}
	result.Reassigned = int(reassigned)

	log.Info().Str("user_id", userID.String()).Str("file_id", fileID.String()).
		Int("staged", result.Staged).Int("skipped", result.Skipped).Int("failed", result.Failed).
		Msg("file staged")
	return result, nil
}

func (s *ImportService) fileAndMapping(userID, fileID uuid.UUID) (*models.ImportFile, map[string]string, error) {
	file, err := s.fileRepo.GetByID(userID, fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("import file not found: %w", err)
	}

	mappings, err := s.mappingRepo.Load(userID, fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load mapping: %w", err)
	}
	if len(mappings) == 0 {
		return nil, nil, ErrNoMapping
	}
	return file, mappings, nil
}
