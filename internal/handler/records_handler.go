package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/oakmere-data/enricher/internal/dto"
	"github.com/oakmere-data/enricher/internal/repository"
	"github.com/oakmere-data/enricher/internal/service"
)

// RecordsHandler exposes the business record catalogue endpoints.
type RecordsHandler struct {
	records *service.RecordsService
}

// NewRecordsHandler creates a new handler instance.
func NewRecordsHandler(records *service.RecordsService) *RecordsHandler {
	return &RecordsHandler{records: records}
}

// List handles GET /records requests.
func (h *RecordsHandler) List(c echo.Context) error {
	filter := dto.RecordListFilter{
		Q:          strings.TrimSpace(c.QueryParam("q")),
		Country:    strings.TrimSpace(c.QueryParam("country")),
		Status:     strings.TrimSpace(c.QueryParam("status")),
		Incomplete: parseBoolDefault(c.QueryParam("incomplete"), false),
		Page:       parseIntDefault(c.QueryParam("page"), 1),
		PerPage:    parseIntDefault(c.QueryParam("per_page"), 20),
	}

	records, err := h.records.ListRecords(c.Request().Context(), filter)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list records")
	}

	return Success(c, http.StatusOK, "records retrieved", records)
}

// Get handles GET /records/:id requests.
func (h *RecordsHandler) Get(c echo.Context) error {
	record, err := h.records.GetRecord(c.Request().Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return Error(c, http.StatusNotFound, "record not found")
		case err.Error() == "invalid record id":
			return Error(c, http.StatusBadRequest, err.Error())
		default:
			return Error(c, http.StatusInternalServerError, "failed to fetch record")
		}
	}

	return Success(c, http.StatusOK, "ok", record)
}

// Import handles POST /records/import requests.
func (h *RecordsHandler) Import(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	result, err := h.records.ImportCSV(c.Request().Context(), file)
	if err != nil {
		var validationErr service.CSVValidationError
		if errors.As(err, &validationErr) {
			return Error(c, http.StatusBadRequest, validationErr.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to process csv")
	}

	return Success(c, http.StatusOK, "records CSV processed", result)
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}

func parseBoolDefault(input string, fallback bool) bool {
	if input == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(input); err == nil {
		return value
	}
	return fallback
}
