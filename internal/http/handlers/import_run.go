package handlers

import (
	"errors"
	"net/http"

	"woodoctor/internal/http/middleware"
	"woodoctor/internal/services"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ImportRunHandler starts, observes and cancels import runs.
type ImportRunHandler struct {
	runService *services.ImportRunService
	broker     *services.ProgressBroker
	upgrader   websocket.Upgrader
}

func NewImportRunHandler(runService *services.ImportRunService, broker *services.ProgressBroker) *ImportRunHandler {
	return &ImportRunHandler{
		runService: runService,
		broker:     broker,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start godoc
// @Summary Start an import run
// @Description Upload the file's staged products to a store in batches
// @Tags import-runs
// @Accept json
// @Produce json
// @Param request body services.StartRunRequest true "Run configuration"
// @Success 202 {object} models.ImportRun
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /import-runs [post]
func (h *ImportRunHandler) Start(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req services.StartRunRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	run, err := h.runService.Start(userID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRunInProgress):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, services.ErrConfirmOrphans):
			return c.JSON(http.StatusConflict, map[string]string{
				"error":                 err.Error(),
				"confirmation_required": "true",
			})
		default:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusAccepted, run)
}

// Cancel godoc
// @Summary Cancel the active import run
// @Tags import-runs
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /import-runs/cancel [post]
func (h *ImportRunHandler) Cancel(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	if !h.runService.Cancel(userID) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no active import run"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "cancellation requested"})
}

// Get godoc
// @Summary Get an import run
// @Tags import-runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} models.ImportRun
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /import-runs/{id} [get]
func (h *ImportRunHandler) Get(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid run id"})
	}

	run, err := h.runService.GetRun(userID, runID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "import run not found"})
	}
	return c.JSON(http.StatusOK, run)
}

// List godoc
// @Summary List recent import runs
// @Tags import-runs
// @Produce json
// @Success 200 {array} models.ImportRun
// @Security BearerAuth
// @Router /import-runs [get]
func (h *ImportRunHandler) List(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	runs, err := h.runService.ListRuns(userID, 20)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list runs"})
	}
	return c.JSON(http.StatusOK, runs)
}

// Progress streams run progress snapshots over a WebSocket until the client
// disconnects.
func (h *ImportRunHandler) Progress(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	progress, unsubscribe := h.broker.Subscribe(userID)
	defer unsubscribe()

	// reader goroutine notices the client going away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snapshot, ok := <-progress:
			if !ok {
				return nil
			}
			if err := conn.WriteJSON(snapshot); err != nil {
				log.Debug().Err(err).Msg("progress websocket write failed")
				return nil
			}
		case <-done:
			return nil
		}
	}
}
