package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ueesync/internal/repository"
	"ueesync/internal/service"
)

type SyncHandler struct {
	Repo     repository.Repository
	Orders   *service.OrderSyncService
	Products *service.ProductSyncService
}

func (h *SyncHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/sync")
	group.POST("/orders", h.runOrders)
	group.POST("/products", h.runProducts)
	group.GET("/state", h.state)
}

type runOrdersRequest struct {
	// ForceFromSec overrides the stored cursor for a manual re-pull.
	ForceFromSec int64 `json:"force_from_time"`
}

// @Summary Run one incremental order sync pass
// @Tags sync
// @Accept json
// @Param body body runOrdersRequest false "options"
// @Success 200 {object} apiResponse
// @Router /api/v1/sync/orders [post]
func (h *SyncHandler) runOrders(c *gin.Context) {
	if h.Orders == nil {
		Error(c, http.StatusInternalServerError, "order sync unavailable", nil)
		return
	}
	var req runOrdersRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			Error(c, http.StatusBadRequest, "invalid body", nil)
			return
		}
	}
	if req.ForceFromSec < 0 {
		Error(c, http.StatusBadRequest, "force_from_time must be >= 0", nil)
		return
	}
	result, err := h.Orders.Run(c.Request.Context(), service.RunOptions{ForceFromSec: req.ForceFromSec})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, result, nil)
}

// @Summary Refresh the product catalog from the vendor
// @Tags sync
// @Success 200 {object} apiResponse
// @Router /api/v1/sync/products [post]
func (h *SyncHandler) runProducts(c *gin.Context) {
	if h.Products == nil {
		Error(c, http.StatusInternalServerError, "product sync unavailable", nil)
		return
	}
	result, err := h.Products.Run(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, result, nil)
}

// @Summary List sync cursors per job
// @Tags sync
// @Success 200 {object} apiResponse
// @Router /api/v1/sync/state [get]
func (h *SyncHandler) state(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	states, err := h.Repo.ListSyncStates(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, states, nil)
}
