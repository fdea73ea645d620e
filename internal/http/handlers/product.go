package handlers

import (
	"net/http"
	"strconv"

	"woodoctor/internal/http/middleware"
	"woodoctor/internal/services"
	"woodoctor/pkg/models"

	"github.com/labstack/echo/v4"
)

// ProductHandler exposes the remote catalog of the connected store.
type ProductHandler struct {
	storeService *services.StoreService
	bulkService  *services.BulkPriceService
	fieldService *services.FieldService
}

func NewProductHandler(storeService *services.StoreService, bulkService *services.BulkPriceService, fieldService *services.FieldService) *ProductHandler {
	return &ProductHandler{
		storeService: storeService,
		bulkService:  bulkService,
		fieldService: fieldService,
	}
}

// List godoc
// @Summary List remote products
// @Description Page through the connected store's catalog
// @Tags products
// @Produce json
// @Param page query int false "Page" default(1)
// @Param per_page query int false "Page size" default(20)
// @Param search query string false "Search term"
// @Success 200 {array} woocommerce.Product
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	client, err := h.storeService.ClientForUser(userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	if perPage <= 0 {
		perPage = 20
	}

	products, err := client.ListProducts(c.Request().Context(), page, perPage, c.QueryParam("search"))
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, products)
}

// Delete godoc
// @Summary Delete a remote product
// @Tags products
// @Param id path int true "Remote product ID"
// @Param force query bool false "Skip the trash"
// @Success 204
// @Security BearerAuth
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid product id"})
	}
	force, _ := strconv.ParseBool(c.QueryParam("force"))

	client, err := h.storeService.ClientForUser(userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := client.DeleteProduct(c.Request().Context(), productID, force); err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// BulkPriceUpdate godoc
// @Summary Bulk price update
// @Description Adjust a price field across the whole remote catalog by a percentage
// @Tags products
// @Accept json
// @Produce json
// @Param request body models.BulkPriceUpdateRequest true "Adjustment"
// @Success 200 {object} services.BulkPriceResult
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /products/bulk-price [post]
func (h *ProductHandler) BulkPriceUpdate(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req models.BulkPriceUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := h.bulkService.UpdatePrices(c.Request().Context(), userID, req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

// Fields godoc
// @Summary Product field vocabulary
// @Description The mapping-target fields known for the user's store
// @Tags products
// @Produce json
// @Success 200 {object} map[string][]string
// @Security BearerAuth
// @Router /products/fields [get]
func (h *ProductHandler) Fields(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	fields, err := h.fieldService.Fields(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string][]string{"fields": fields})
}

// RefreshFields godoc
// @Summary Refresh the product field vocabulary
// @Description Re-fetch field names from the connected store's schema
// @Tags products
// @Produce json
// @Success 200 {object} map[string][]string
// @Security BearerAuth
// @Router /products/fields/refresh [post]
func (h *ProductHandler) RefreshFields(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	fields, err := h.fieldService.Refresh(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string][]string{"fields": fields})
}
