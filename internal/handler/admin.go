package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ueesync/internal/service"
)

type AdminHandler struct {
	Recompute *service.RecomputeService
}

func (h *AdminHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/admin")
	group.POST("/orders/rebuild-anchors", h.rebuildAnchors)
	group.POST("/anchors/:anchorId/backfill", h.backfillAnchor)
}

// @Summary Recompute attribution for all orders from the mapping table
// @Tags admin
// @Success 200 {object} apiResponse
// @Router /api/v1/admin/orders/rebuild-anchors [post]
func (h *AdminHandler) rebuildAnchors(c *gin.Context) {
	if h.Recompute == nil {
		Error(c, http.StatusInternalServerError, "recompute unavailable", nil)
		return
	}
	result, err := h.Recompute.RebuildAnchorsFromMap(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, result, nil)
}

// @Summary Backfill one anchor onto historical orders matching its products
// @Tags admin
// @Param anchorId path string true "anchor id"
// @Success 200 {object} apiResponse
// @Router /api/v1/admin/anchors/{anchorId}/backfill [post]
func (h *AdminHandler) backfillAnchor(c *gin.Context) {
	if h.Recompute == nil {
		Error(c, http.StatusInternalServerError, "recompute unavailable", nil)
		return
	}
	anchorID := strings.TrimSpace(c.Param("anchorId"))
	if anchorID == "" {
		Error(c, http.StatusBadRequest, "anchor id required", nil)
		return
	}
	result, err := h.Recompute.BackfillAnchorOrders(c.Request.Context(), anchorID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, result, nil)
}
