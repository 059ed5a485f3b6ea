package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ueesync/internal/repository"
	"ueesync/internal/service"
)

type MonitorHandler struct {
	Repo    repository.Repository
	Monitor *service.MonitorService
}

func (h *MonitorHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/monitor")
	group.GET("/stats", h.stats)
	group.POST("/run", h.run)
}

// @Summary List recent watchdog snapshots
// @Tags monitor
// @Param type query string false "stat type"
// @Param limit query int false "max rows, default 50"
// @Success 200 {object} apiResponse
// @Router /api/v1/monitor/stats [get]
func (h *MonitorHandler) stats(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	statType := strings.TrimSpace(c.Query("type"))
	limit := 50
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	rows, err := h.Repo.ListMonitorStats(c.Request.Context(), statType, limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rows, nil)
}

// @Summary Run the watchdog once
// @Tags monitor
// @Success 200 {object} apiResponse
// @Router /api/v1/monitor/run [post]
func (h *MonitorHandler) run(c *gin.Context) {
	if h.Monitor == nil {
		Error(c, http.StatusInternalServerError, "monitor unavailable", nil)
		return
	}
	result, err := h.Monitor.Run(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, result, nil)
}
