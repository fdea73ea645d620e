package handlers

import (
	"net/http"

	"woodoctor/internal/http/middleware"
	"woodoctor/internal/services"
	"woodoctor/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// StoreHandler manages WooCommerce store connections
type StoreHandler struct {
	storeService *services.StoreService
}

func NewStoreHandler(storeService *services.StoreService) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

// List godoc
// @Summary List store connections
// @Tags stores
// @Produce json
// @Success 200 {array} models.StoreConnection
// @Security BearerAuth
// @Router /stores [get]
func (h *StoreHandler) List(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	stores, err := h.storeService.List(userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list stores"})
	}
	return c.JSON(http.StatusOK, stores)
}

// Create godoc
// @Summary Add a store connection
// @Tags stores
// @Accept json
// @Produce json
// @Param request body models.StoreConnection true "Store data"
// @Success 201 {object} models.StoreConnection
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /stores [post]
func (h *StoreHandler) Create(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var store models.StoreConnection
	if err := c.Bind(&store); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&store); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.storeService.Create(userID, &store); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create store"})
	}
	return c.JSON(http.StatusCreated, store)
}

// Get godoc
// @Summary Get a store connection
// @Tags stores
// @Produce json
// @Param id path string true "Store ID"
// @Success 200 {object} models.StoreConnection
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /stores/{id} [get]
func (h *StoreHandler) Get(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid store id"})
	}

	store, err := h.storeService.Get(userID, storeID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "store not found"})
	}
	return c.JSON(http.StatusOK, store)
}

// Update godoc
// @Summary Update a store connection
// @Tags stores
// @Accept json
// @Produce json
// @Param id path string true "Store ID"
// @Param request body models.StoreConnection true "Store data"
// @Success 200 {object} models.StoreConnection
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /stores/{id} [put]
func (h *StoreHandler) Update(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid store id"})
	}

	var store models.StoreConnection
	if err := c.Bind(&store); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	store.ID = storeID

	if err := h.storeService.Update(userID, &store); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, store)
}

// Delete godoc
// @Summary Remove a store connection
// @Tags stores
// @Param id path string true "Store ID"
// @Success 204
// @Security BearerAuth
// @Router /stores/{id} [delete]
func (h *StoreHandler) Delete(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid store id"})
	}

	if err := h.storeService.Delete(userID, storeID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete store"})
	}
	return c.NoContent(http.StatusNoContent)
}

// TestConnection godoc
// @Summary Test a store connection
// @Description Check the store's REST API with the saved credentials
// @Tags stores
// @Produce json
// @Param id path string true "Store ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /stores/{id}/test [post]
func (h *StoreHandler) TestConnection(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid store id"})
	}

	if err := h.storeService.TestConnection(c.Request().Context(), userID, storeID); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "connection ok"})
}

// Connect godoc
// @Summary Make a store the active connection
// @Description Verify credentials and mark this store as the user's single active store
// @Tags stores
// @Produce json
// @Param id path string true "Store ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /stores/{id}/connect [post]
func (h *StoreHandler) Connect(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid store id"})
	}

	if err := h.storeService.Connect(c.Request().Context(), userID, storeID); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "store connected"})
}
