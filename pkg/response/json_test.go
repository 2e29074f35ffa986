package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/sharedexpenses/pkg/apperr"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantRetry   string
	}{
		{"validation", apperr.Validation("bad input"), http.StatusBadRequest, "VALIDATION_ERROR", "bad input", ""},
		{"wrapped not found", fmt.Errorf("split 7: %w", apperr.NotFound("not found")), http.StatusNotFound, "NOT_FOUND", "split 7: not found", ""},
		{"unauthorized", apperr.Unauthorized("nope"), http.StatusForbidden, "FORBIDDEN", "nope", ""},
		{"conflict", apperr.Conflict("already paid"), http.StatusConflict, "CONFLICT", "already paid", ""},
		{"retryable conflict", apperr.RetryableConflict("retry"), http.StatusConflict, "CONFLICT", "retry", "1"},
		{"invariant", apperr.Invariant("broken"), http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", ""},
		{"plain error", errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			FromError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantRetry, rec.Header().Get("Retry-After"))

			var body APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantMessage, body.Error.Message)
		})
	}
}

func TestJSONWithMeta(t *testing.T) {
	rec := httptest.NewRecorder()

	JSONWithMeta(rec, http.StatusOK, []int{1, 2}, &Meta{Page: 2, PerPage: 2, Total: 5, TotalPages: 3})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success": true, "data": [1, 2], "meta": {"page": 2, "per_page": 2, "total": 5, "total_pages": 3}}`, rec.Body.String())
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	JSON(rec, http.StatusCreated, map[string]int{"id": 4})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success": true, "data": {"id": 4}}`, rec.Body.String())
}
