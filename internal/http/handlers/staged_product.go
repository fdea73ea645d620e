package handlers

import (
	"net/http"
	"strconv"

	"woodoctor/internal/http/middleware"
	"woodoctor/internal/repo"
	"woodoctor/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// StagedProductHandler manages the locally staged products awaiting import.
type StagedProductHandler struct {
	stagedRepo *repo.StagedProductRepository
}

func NewStagedProductHandler(stagedRepo *repo.StagedProductRepository) *StagedProductHandler {
	return &StagedProductHandler{stagedRepo: stagedRepo}
}

// List godoc
// @Summary List staged products
// @Tags staged-products
// @Produce json
// @Param page query int false "Page" default(1)
// @Param per_page query int false "Page size" default(50)
// @Success 200 {object} models.PaginationResult[models.StagedProduct]
// @Security BearerAuth
// @Router /staged-products [get]
func (h *StagedProductHandler) List(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))

	result, err := h.stagedRepo.ListByUser(userID, page, perPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list staged products"})
	}
	return c.JSON(http.StatusOK, result)
}

// Get godoc
// @Summary Get a staged product
// @Tags staged-products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.StagedProduct
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /staged-products/{id} [get]
func (h *StagedProductHandler) Get(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid product id"})
	}

	product, err := h.stagedRepo.GetByID(userID, productID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "staged product not found"})
	}
	return c.JSON(http.StatusOK, product)
}

// Update godoc
// @Summary Edit a staged product
// @Tags staged-products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body models.StagedProduct true "Product data"
// @Success 200 {object} models.StagedProduct
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /staged-products/{id} [put]
func (h *StagedProductHandler) Update(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid product id"})
	}

	existing, err := h.stagedRepo.GetByID(userID, productID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "staged product not found"})
	}

	var update models.StagedProduct
	if err := c.Bind(&update); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if update.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	// id, owner and file association never change through this endpoint
	update.BaseUserModel = existing.BaseUserModel
	update.ImportFileID = existing.ImportFileID

	if err := h.stagedRepo.Update(&update); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update staged product"})
	}
	return c.JSON(http.StatusOK, update)
}

// Delete godoc
// @Summary Delete a staged product
// @Tags staged-products
// @Param id path string true "Product ID"
// @Success 204
// @Security BearerAuth
// @Router /staged-products/{id} [delete]
func (h *StagedProductHandler) Delete(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid product id"})
	}

	if err := h.stagedRepo.Delete(userID, productID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete staged product"})
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteAll godoc
// @Summary Delete all staged products
// @Tags staged-products
// @Success 204
// @Security BearerAuth
// @Router /staged-products [delete]
func (h *StagedProductHandler) DeleteAll(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	if err := h.stagedRepo.DeleteAllByUser(userID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete staged products"})
	}
	return c.NoContent(http.StatusNoContent)
}
