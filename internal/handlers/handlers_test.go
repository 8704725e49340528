package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lendbook/lendbook-api/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"Not found", services.ErrNotFound, http.StatusNotFound},
		{"Wrapped not found", fmt.Errorf("loading loan: %w", services.ErrNotFound), http.StatusNotFound},
		{"Invalid argument", services.ErrInvalidArgument, http.StatusBadRequest},
		{"Duplicate", services.ErrDuplicate, http.StatusConflict},
		{"Invalid state", services.ErrInvalidState, http.StatusUnprocessableEntity},
		{"Invalid password", services.ErrInvalidPassword, http.StatusUnauthorized},
		{"Unauthorized", services.ErrUnauthorized, http.StatusUnauthorized},
		{"Unknown error", fmt.Errorf("database exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var body map[string]string
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHealthIndex(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	h := NewHealthHandler(nil)
	router.GET("/api/v1/health", h.Index)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "lendbook-api", body["service"])
}
