package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/domain/shared"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/interfaces/http/dto"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// performRequest sends a JSON request through router. A nil body sends none.
func performRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of a success envelope into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()

	var resp APIResponse[json.RawMessage]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.True(t, resp.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(resp.Data, out))
}

// errorCode returns the error code of an error envelope
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name: "from context",
			setup: func(c *gin.Context) {
				c.Set(middleware.RequestIDKey, "ctx-request-id")
			},
			expectedID: "ctx-request-id",
		},
		{
			name: "from header when context empty",
			setup: func(c *gin.Context) {
				c.Request.Header.Set(middleware.RequestIDHeader, "header-request-id")
			},
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set(middleware.RequestIDKey, "ctx-id")
				c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandler_HandleDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", shared.NewValidationError("bad amount"), http.StatusBadRequest, dto.ErrCodeValidation},
		{"not found", shared.NewNotFoundError("missing"), http.StatusNotFound, dto.ErrCodeNotFound},
		{"unauthorized", shared.NewUnauthorizedError("no"), http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"invalid state", shared.NewInvalidStateError("too late"), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"unavailable", shared.NewUnavailableError("closed"), http.StatusServiceUnavailable, dto.ErrCodeUnavailable},
		{"wrapped", fmt.Errorf("settle: %w", shared.NewNotFoundError("missing")), http.StatusNotFound, dto.ErrCodeNotFound},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable, dto.ErrCodeUnavailable},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	h := &BaseHandler{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h.HandleDomainError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, w))
		})
	}
}

func TestBaseHandler_BindJSON(t *testing.T) {
	type body struct {
		Pincode string `json:"pincode" binding:"required,pincode"`
	}

	h := &BaseHandler{}
	router := gin.New()
	router.POST("/", func(c *gin.Context) {
		var req body
		if !h.BindJSON(c, &req) {
			return
		}
		h.Success(c, req)
	})

	w := performRequest(t, router, http.MethodPost, "/", map[string]string{"pincode": "12"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, errorCode(t, w))

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{not json"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, errorCode(t, w))

	w = performRequest(t, router, http.MethodPost, "/", map[string]string{"pincode": "560001"})
	assert.Equal(t, http.StatusOK, w.Code)
}
