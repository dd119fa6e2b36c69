// README: Dispatch handlers: courier notification fan-out, expanded-radius
// retries, cancellation, and direct assignment.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quickcart/internal/modules/assignment"
	"quickcart/internal/modules/matching"
	"quickcart/internal/types"
)

type DispatchHandler struct {
	matcher *matching.Service
	engine  *assignment.Engine
}

func NewDispatchHandler(matcher *matching.Service, engine *assignment.Engine) *DispatchHandler {
	return &DispatchHandler{matcher: matcher, engine: engine}
}

type notifyReq struct {
	RadiusKm float64 `json:"radius_km"`
}

func (h *DispatchHandler) NotifyPartners(c *gin.Context) {
	orderID := types.ID(c.Param("id"))
	var req notifyReq
	// Body is optional; an empty one means the default radius.
	_ = c.ShouldBindJSON(&req)

	dispatch, err := h.matcher.NotifyNearbyPartners(c.Request.Context(), orderID, req.RadiusKm)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, dispatch)
}

type retryReq struct {
	Attempt int `json:"attempt"`
}

func (h *DispatchHandler) RetryDispatch(c *gin.Context) {
	orderID := types.ID(c.Param("id"))
	var req retryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Attempt < 1 {
		writeError(c, http.StatusBadRequest, "attempt must be at least 1")
		return
	}

	dispatch, err := h.matcher.RetryWithExpandedRadius(c.Request.Context(), orderID, req.Attempt)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, dispatch)
}

type cancelNotificationsReq struct {
	PartnerID string `json:"partner_id"`
}

func (h *DispatchHandler) CancelNotifications(c *gin.Context) {
	orderID := types.ID(c.Param("id"))
	var req cancelNotificationsReq
	if err := c.ShouldBindJSON(&req); err != nil || req.PartnerID == "" {
		writeError(c, http.StatusBadRequest, "partner_id is required")
		return
	}

	if err := h.matcher.CancelPendingNotifications(c.Request.Context(), orderID, types.ID(req.PartnerID)); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "cancelled"})
}

type assignReq struct {
	Strategy string `json:"strategy"`
}

func (h *DispatchHandler) Assign(c *gin.Context) {
	orderID := types.ID(c.Param("id"))
	var req assignReq
	_ = c.ShouldBindJSON(&req)

	strategy, err := assignment.ParseStrategy(req.Strategy)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	partner, err := h.engine.AutoAssign(c.Request.Context(), orderID, strategy)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"order_id":            orderID,
		"delivery_partner_id": partner.ID,
		"strategy":            strategy.String(),
	})
}
