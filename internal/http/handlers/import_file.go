package handlers

import (
	"errors"
	"io"
	"net/http"

	"woodoctor/internal/http/middleware"
	"woodoctor/internal/services"
	"woodoctor/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// maxUploadBytes caps import file uploads.
const maxUploadBytes = 32 << 20

// ImportFileHandler manages source file uploads, field detection, mapping
// and staging.
type ImportFileHandler struct {
	importService *services.ImportService
	fileRepo      FileLister
}

// FileLister is the read side of import file listing.
type FileLister interface {
	ListByUser(userID uuid.UUID) ([]models.ImportFile, error)
	Delete(userID, fileID uuid.UUID) error
}

func NewImportFileHandler(importService *services.ImportService, fileRepo FileLister) *ImportFileHandler {
	return &ImportFileHandler{importService: importService, fileRepo: fileRepo}
}

// Upload godoc
// @Summary Upload an import file
// @Description Store a CSV or XML product feed for mapping and staging
// @Tags import-files
// @Accept mpfd
// @Produce json
// @Param file formData file true "CSV or XML file"
// @Success 201 {object} models.ImportFile
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /import-files [post]
func (h *ImportFileHandler) Upload(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing file"})
	}
	if fileHeader.Size > maxUploadBytes {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file too large"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read file"})
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read file"})
	}

	file, err := h.importService.UploadFile(userID, fileHeader.Filename, string(content))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, file)
}

// List godoc
// @Summary List uploaded import files
// @Tags import-files
// @Produce json
// @Success 200 {array} models.ImportFile
// @Security BearerAuth
// @Router /import-files [get]
func (h *ImportFileHandler) List(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	files, err := h.fileRepo.ListByUser(userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list files"})
	}
	return c.JSON(http.StatusOK, files)
}

// Delete godoc
// @Summary Delete an import file
// @Tags import-files
// @Param id path string true "File ID"
// @Success 204
// @Security BearerAuth
// @Router /import-files/{id} [delete]
func (h *ImportFileHandler) Delete(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid file id"})
	}

	if err := h.fileRepo.Delete(userID, fileID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete file"})
	}
	return c.NoContent(http.StatusNoContent)
}

// DetectFields godoc
// @Summary Detect source fields
// @Description Return the field names found in the uploaded file
// @Tags import-files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} map[string][]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /import-files/{id}/fields [get]
func (h *ImportFileHandler) DetectFields(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid file id"})
	}

	fields, err := h.importService.DetectFields(userID, fileID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string][]string{"fields": fields})
}

// GetMapping godoc
// @Summary Get the saved field mapping
// @Tags mappings
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} map[string]map[string]string
// @Security BearerAuth
// @Router /import-files/{id}/mapping [get]
func (h *ImportFileHandler) GetMapping(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid file id"})
	}

	mappings, err := h.importService.GetMapping(userID, fileID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]map[string]string{"mappings": mappings})
}

// AutoMap godoc
// @Summary Propose a field mapping
// @Description Match detected source fields against the product field vocabulary
// @Tags mappings
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} map[string]map[string]string
// @Security BearerAuth
// @Router /import-files/{id}/mapping/auto [post]
func (h *ImportFileHandler) AutoMap(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid file id"})
	}

	mappings, err := h.importService.AutoMap(c.Request().Context(), userID, fileID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]map[string]string{"mappings": mappings})
}

// SaveMapping godoc
// @Summary Save the field mapping
// @Description Replace the file's mapping; targets must belong to the field vocabulary
// @Tags mappings
// @Accept json
// @Produce json
// @Param id path string true "File ID"
// @Param request body models.SaveMappingRequest true "Mapping"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /import-files/{id}/mapping [put]
func (h *ImportFileHandler) SaveMapping(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid file id"})
	}

	var req models.SaveMappingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.importService.SaveMapping(c.Request().Context(), userID, fileID, req.Mappings); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "mapping saved"})
}

// Preview godoc
// @Summary Preview parsed records
// @Description Parse the file with its saved mapping, capped at a handful of records
// @Tags import-files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /import-files/{id}/preview [get]
func (h *ImportFileHandler) Preview(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid file id"})
	}

	records, total, err := h.importService.Preview(userID, fileID)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, services.ErrNoMapping) {
			status = http.StatusUnprocessableEntity
		}
		return c.JSON(status, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"records": records,
		"total":   total,
	})
}

// Stage godoc
// @Summary Stage the whole file
// @Description Parse and normalize every record into staged products
// @Tags import-files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} services.StageResult
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /import-files/{id}/stage [post]
func (h *ImportFileHandler) Stage(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid file id"})
	}

	result, err := h.importService.Stage(userID, fileID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}
