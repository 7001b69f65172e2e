package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/miniuni/miniuni-web/internal/apiclient"
	"github.com/miniuni/miniuni-web/internal/response"
	"github.com/rs/zerolog"
)

const upstreamProbeTimeout = 2 * time.Second

// SystemHandler reports process and upstream health.
type SystemHandler struct {
	api       *apiclient.Client
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(api *apiclient.Client, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		api:       api,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type healthStatus struct {
	Status     string `json:"status"`
	Upstream   string `json:"upstream"`
	Uptime     string `json:"uptime"`
	Goroutines int    `json:"goroutines"`
	GoVersion  string `json:"go_version"`
}

// Health godoc
// GET /health
// 200 when the MiniUni API answers its own health check, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), upstreamProbeTimeout)
	defer cancel()

	body := healthStatus{
		Status:     "ok",
		Upstream:   "ok",
		Uptime:     formatDuration(time.Since(h.startTime)),
		Goroutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
	}
	status := http.StatusOK

	if err := h.api.Health(ctx); err != nil {
		h.log.Warn().Err(err).Str("api", h.api.BaseURL()).Msg("Upstream health check failed")
		body.Status = "degraded"
		body.Upstream = apiclient.Message(err)
		status = http.StatusServiceUnavailable
	}

	response.Success(c, status, body)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
