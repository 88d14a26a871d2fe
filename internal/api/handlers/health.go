package handlers

import (
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/marketboard/marketboard-go/internal/cache"
	"github.com/marketboard/marketboard-go/internal/services"
)

var startTime = time.Now()

type HealthHandler struct {
	dashboard *services.DashboardService
	redis     *cache.RedisClient
	version   string
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	System    SystemStats       `json:"system"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
}

// SystemStats is a small resource snapshot for operators reading the
// health endpoint.
type SystemStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	Goroutines    int     `json:"goroutines"`
}

// NewHealthHandler creates a health handler. redis may be nil when the
// snapshot cache is disabled.
func NewHealthHandler(dashboard *services.DashboardService, redis *cache.RedisClient, version string) *HealthHandler {
	return &HealthHandler{
		dashboard: dashboard,
		redis:     redis,
		version:   version,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	statuses := make(map[string]string)

	// Check the aligned table. An empty table is a degenerate state the
	// API tolerates, but operators want to see it.
	if h.dashboard != nil && h.dashboard.Table().Len() > 0 {
		statuses["data"] = "healthy"
	} else {
		statuses["data"] = "degraded: no aligned rows"
	}

	// Check the snapshot cache
	if h.redis != nil {
		if err := h.redis.HealthCheck(c.Request.Context()); err != nil {
			statuses["cache"] = "unhealthy: " + err.Error()
		} else {
			statuses["cache"] = "healthy"
		}
	} else {
		statuses["cache"] = "disabled"
	}

	overallStatus := "healthy"
	for _, status := range statuses {
		if strings.HasPrefix(status, "unhealthy") {
			overallStatus = "unhealthy"
			break
		}
		if strings.HasPrefix(status, "degraded") {
			overallStatus = "degraded"
		}
	}

	response := HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Services:  statuses,
		System:    h.systemStats(c),
		Version:   h.version,
		Uptime:    time.Since(startTime).String(),
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, response)
}

func (h *HealthHandler) systemStats(c *gin.Context) SystemStats {
	stats := SystemStats{Goroutines: runtime.NumGoroutine()}

	// Interval 0 reports usage since the previous call instead of blocking
	// the health check while sampling.
	if cpuPercent, err := cpu.PercentWithContext(c.Request.Context(), 0, false); err == nil && len(cpuPercent) > 0 {
		stats.CPUPercent = cpuPercent[0]
	}
	if memInfo, err := mem.VirtualMemoryWithContext(c.Request.Context()); err == nil {
		stats.MemoryPercent = memInfo.UsedPercent
	}
	return stats
}
