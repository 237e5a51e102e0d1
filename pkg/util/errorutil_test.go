package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	original := NewValidationError("bad input", map[string]any{"field": "email"})
	converted := ToDomainError(original)
	assert.Equal(t, "VALIDATION_FAILED", converted.Code)
	assert.Equal(t, http.StatusBadRequest, converted.HTTPStatus)
	assert.Equal(t, "email", converted.Details["field"])
}

func TestToDomainErrorWrappedDomainError(t *testing.T) {
	wrapped := fmt.Errorf("loading user: %w", NewForbidden("no access"))
	converted := ToDomainError(wrapped)
	assert.Equal(t, "FORBIDDEN", converted.Code)
	assert.Equal(t, http.StatusForbidden, converted.HTTPStatus)
}

func TestToDomainErrorNoRows(t *testing.T) {
	converted := ToDomainError(fmt.Errorf("query: %w", pgx.ErrNoRows))
	assert.Equal(t, "NOT_FOUND", converted.Code)
	assert.Equal(t, http.StatusNotFound, converted.HTTPStatus)
}

func TestToDomainErrorUnknown(t *testing.T) {
	converted := ToDomainError(errors.New("disk on fire"))
	assert.Equal(t, "INTERNAL_ERROR", converted.Code)
	assert.Equal(t, http.StatusInternalServerError, converted.HTTPStatus)
	// The original error is preserved for logging but hidden from the
	// response message.
	assert.NotContains(t, converted.Message, "disk on fire")
}

func TestMapErrorKeepsDomainErrors(t *testing.T) {
	original := NewConflict("duplicate", nil)
	assert.Equal(t, original, MapError(original))

	mapped := MapError(pgx.ErrNoRows)
	assert.Equal(t, "NOT_FOUND", ToDomainError(mapped).Code)
}
