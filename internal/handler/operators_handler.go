package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oakmere-data/enricher/internal/dto"
	"github.com/oakmere-data/enricher/internal/repository"
	"github.com/oakmere-data/enricher/internal/service"
)

// OperatorsHandler exposes administrative operator management endpoints.
type OperatorsHandler struct {
	operators *service.OperatorService
}

// NewOperatorsHandler constructs a handler instance.
func NewOperatorsHandler(operators *service.OperatorService) *OperatorsHandler {
	return &OperatorsHandler{operators: operators}
}

// List returns all operators.
func (h *OperatorsHandler) List(c echo.Context) error {
	records, err := h.operators.ListOperators(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list operators")
	}
	return Success(c, http.StatusOK, "operators retrieved", records)
}

// Create provisions a new operator.
func (h *OperatorsHandler) Create(c echo.Context) error {
	var req dto.CreateOperatorRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	operator, err := h.operators.CreateOperator(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			return Error(c, http.StatusConflict, "email already exists")
		default:
			return Error(c, http.StatusBadRequest, err.Error())
		}
	}

	return Success(c, http.StatusCreated, "operator created", operator)
}

// Update modifies an existing operator.
func (h *OperatorsHandler) Update(c echo.Context) error {
	id := c.Param("id")
	var req dto.UpdateOperatorRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	operator, err := h.operators.UpdateOperator(c.Request().Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOperatorNotFound):
			return Error(c, http.StatusNotFound, "operator not found")
		case errors.Is(err, repository.ErrEmailTaken):
			return Error(c, http.StatusConflict, "email already exists")
		default:
			return Error(c, http.StatusBadRequest, err.Error())
		}
	}

	return Success(c, http.StatusOK, "operator updated", operator)
}

// Delete removes an operator.
func (h *OperatorsHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.operators.DeleteOperator(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrOperatorNotFound) {
			return Error(c, http.StatusNotFound, "operator not found")
		}
		if err.Error() == "invalid operator id" {
			return Error(c, http.StatusBadRequest, err.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to delete operator")
	}

	return Success(c, http.StatusOK, "operator deleted", nil)
}
