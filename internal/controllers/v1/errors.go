package v1

import (
	"errors"
	"net/http"

	"github.com/orcamento-aberto/backend/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"there is no rubrica matching your query"`
}

// status returns the appropriate status for a database error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	if errors.Is(err, models.ErrInsufficientBalance) || errors.Is(err, models.ErrConcurrencyConflict) {
		return http.StatusConflict
	}

	return http.StatusBadRequest
}

var (
	errYearNotSetInQuery = errors.New("the year query parameter must be set")
	errYearInvalid       = errors.New("the year query parameter must be a number")
)
