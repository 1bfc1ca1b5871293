package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/oakmere-data/enricher/internal/entity"
	"github.com/oakmere-data/enricher/internal/repository"
	"github.com/oakmere-data/enricher/internal/service"
)

// RunsHandler exposes enrichment run control and inspection endpoints.
type RunsHandler struct {
	runner *service.Runner
	runs   repository.RunsRepository
}

// NewRunsHandler constructs a handler instance.
func NewRunsHandler(runner *service.Runner, runs repository.RunsRepository) *RunsHandler {
	return &RunsHandler{runner: runner, runs: runs}
}

// Trigger handles POST /runs requests. The run executes in the background;
// the response carries the freshly created row.
func (h *RunsHandler) Trigger(c echo.Context) error {
	run, err := h.runner.Trigger(c.Request().Context(), entity.TriggerManual)
	if err != nil {
		if errors.Is(err, service.ErrRunActive) {
			return Error(c, http.StatusConflict, "an enrichment run is already active")
		}
		return Error(c, http.StatusInternalServerError, "failed to start run")
	}

	return Success(c, http.StatusAccepted, "enrichment run started", run)
}

// List handles GET /runs requests.
func (h *RunsHandler) List(c echo.Context) error {
	limit := parseIntDefault(c.QueryParam("limit"), 20)

	runs, err := h.runs.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list runs")
	}

	return Success(c, http.StatusOK, "runs retrieved", runs)
}

// Get handles GET /runs/:id requests.
func (h *RunsHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid run id")
	}

	run, err := h.runs.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			return Error(c, http.StatusNotFound, "run not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to fetch run")
	}

	return Success(c, http.StatusOK, "ok", run)
}
