package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"

	"github.com/fkhayef/sharedexpenses/internal/logger"
)

func echoUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.Write([]byte(strconv.FormatInt(userID, 10)))
}

func TestIdentity(t *testing.T) {
	tests := []struct {
		name       string
		devUserID  int64
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "header", header: "42", wantStatus: http.StatusOK, wantBody: "42"},
		{name: "header wins over dev user", devUserID: 7, header: "42", wantStatus: http.StatusOK, wantBody: "42"},
		{name: "dev fallback", devUserID: 7, wantStatus: http.StatusOK, wantBody: "7"},
		{name: "missing", wantStatus: http.StatusUnauthorized},
		{name: "not a number", header: "abc", wantStatus: http.StatusUnauthorized},
		{name: "not positive", devUserID: 7, header: "0", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Identity(tt.devUserID)(http.HandlerFunc(echoUser))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(UserIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	base := logger.NewWithWriter(buf)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info().Msg("inside handler")
		w.WriteHeader(http.StatusCreated)
	})
	handler := chimw.RequestID(RequestLogger(base)(Identity(0)(LogUser(inner))))

	req := httptest.NewRequest(http.MethodPost, "/shared-expenses", nil)
	req.Header.Set(UserIDHeader, "3")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	out := buf.String()
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, out, "inside handler")
	assert.Contains(t, out, `"user_id":3`)
	assert.Contains(t, out, `"request_id"`)
	assert.Contains(t, out, `"status":201`)
	assert.Contains(t, out, `"path":"/shared-expenses"`)
}
