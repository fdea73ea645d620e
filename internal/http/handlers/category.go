package handlers

import (
	"net/http"
	"strconv"

	"woodoctor/internal/http/middleware"
	"woodoctor/internal/services"

	"github.com/labstack/echo/v4"
)

// CategoryHandler manages the remote categories of the connected store.
type CategoryHandler struct {
	storeService *services.StoreService
}

func NewCategoryHandler(storeService *services.StoreService) *CategoryHandler {
	return &CategoryHandler{storeService: storeService}
}

// List godoc
// @Summary List remote categories
// @Tags categories
// @Produce json
// @Success 200 {array} woocommerce.Category
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	client, err := h.storeService.ClientForUser(userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	categories, err := client.FetchAllCategories(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, categories)
}

// Create godoc
// @Summary Create a remote category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body map[string]string true "Category name"
// @Success 201 {object} woocommerce.Category
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Name string `json:"name" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	client, err := h.storeService.ClientForUser(userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	category, err := client.CreateCategory(c.Request().Context(), req.Name)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, category)
}

// Update godoc
// @Summary Rename a remote category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path int true "Remote category ID"
// @Param request body map[string]string true "Category name"
// @Success 200 {object} woocommerce.Category
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /categories/{id} [put]
func (h *CategoryHandler) Update(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid category id"})
	}

	var req struct {
		Name string `json:"name" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	client, err := h.storeService.ClientForUser(userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	category, err := client.UpdateCategory(c.Request().Context(), categoryID, req.Name)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, category)
}

// Delete godoc
// @Summary Delete a remote category
// @Tags categories
// @Param id path int true "Remote category ID"
// @Success 204
// @Security BearerAuth
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid category id"})
	}

	client, err := h.storeService.ClientForUser(userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := client.DeleteCategory(c.Request().Context(), categoryID); err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}
