package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_SentinelMatching(t *testing.T) {
	err := NotFound("item not found")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, "item not found: resource not found", err.Error())
}

func TestAppError_WrappedMatching(t *testing.T) {
	err := fmt.Errorf("handler: %w", Forbidden("path does not belong to user"))

	assert.True(t, errors.Is(err, ErrForbidden))

	var appErr *AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{BadRequest("x"), http.StatusBadRequest},
		{Validation("x"), http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("anything else"), http.StatusInternalServerError},
		{InternalServer("boom", errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatus(tt.err), "for error %v", tt.err)
	}
}
