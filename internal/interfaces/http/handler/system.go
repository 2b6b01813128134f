package handler

import (
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/interfaces/http/dto"
)

// Version is the emulator build version reported by /system/info
var Version = "dev"

// SystemHandler serves liveness and build information for the emulator process
type SystemHandler struct {
	BaseHandler
	name    string
	started time.Time

	mu        sync.RWMutex
	endpoints []string
}

func NewSystemHandler(name string) *SystemHandler {
	return &SystemHandler{
		name:    name,
		started: time.Now(),
	}
}

// SetEndpoints records the mounted API surface as "METHOD /path" strings
func (h *SystemHandler) SetEndpoints(endpoints []string) {
	sorted := append([]string(nil), endpoints...)
	sort.Strings(sorted)

	h.mu.Lock()
	h.endpoints = sorted
	h.mu.Unlock()
}

// HealthResponse is the liveness probe body
// @name HandlerHealthResponse
type HealthResponse struct {
	Status    string `json:"status" example:"healthy"`
	Timestamp string `json:"timestamp" example:"2026-03-10T10:00:00Z"`
}

// SystemInfoResponse describes the running emulator build
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string   `json:"name" example:"shopabell-emulator"`
	Version   string   `json:"version" example:"1.0.0"`
	GoVersion string   `json:"go_version" example:"go1.25.5"`
	Uptime    string   `json:"uptime" example:"1h30m45s"`
	Endpoints []string `json:"endpoints,omitempty"`
}

// PingResponse is the ping body
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Health godoc
// @ID           health
// @Summary      Liveness check
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// GetSystemInfo godoc
// @ID           getSystemInfo
// @Summary      Emulator build information
// @Description  Version, uptime and the mounted emulator endpoints
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.mu.RLock()
	endpoints := h.endpoints
	h.mu.RUnlock()

	c.JSON(http.StatusOK, dto.NewSuccessResponse(SystemInfoResponse{
		Name:      h.name,
		Version:   Version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Endpoints: endpoints,
	}))
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the emulator
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(PingResponse{
		Message:   "pong",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}))
}
