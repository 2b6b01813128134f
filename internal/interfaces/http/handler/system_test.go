package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveSystem(h *SystemHandler, handle gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	handle(c)
	return w
}

func TestSystemHandler_Health(t *testing.T) {
	h := NewSystemHandler("shopabell-emulator")

	w := serveSystem(h, h.Health, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("shopabell-emulator")

	t.Run("before endpoints are recorded", func(t *testing.T) {
		w := serveSystem(h, h.GetSystemInfo, "/system/info")
		require.Equal(t, http.StatusOK, w.Code)

		var info SystemInfoResponse
		decodeData(t, w, &info)
		assert.Equal(t, "shopabell-emulator", info.Name)
		assert.Equal(t, Version, info.Version)
		assert.NotEmpty(t, info.GoVersion)
		assert.NotEmpty(t, info.Uptime)
		assert.Empty(t, info.Endpoints)
	})

	t.Run("endpoints are sorted", func(t *testing.T) {
		input := []string{"POST /api/v1/payments/links", "GET /api/v1/courier/courier/serviceability"}
		h.SetEndpoints(input)

		w := serveSystem(h, h.GetSystemInfo, "/system/info")
		var info SystemInfoResponse
		decodeData(t, w, &info)
		assert.Equal(t, []string{
			"GET /api/v1/courier/courier/serviceability",
			"POST /api/v1/payments/links",
		}, info.Endpoints)
		assert.Equal(t, "POST /api/v1/payments/links", input[0], "caller slice is not reordered")
	})
}

func TestSystemHandler_Ping(t *testing.T) {
	h := NewSystemHandler("shopabell-emulator")

	w := serveSystem(h, h.Ping, "/system/ping")
	require.Equal(t, http.StatusOK, w.Code)

	var resp PingResponse
	decodeData(t, w, &resp)
	assert.Equal(t, "pong", resp.Message)
	_, err := time.Parse(time.RFC3339, resp.Timestamp)
	assert.NoError(t, err)
}
