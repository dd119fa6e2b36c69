// README: Courier handlers: live position updates and offline signal.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quickcart/internal/modules/courier"
	"quickcart/internal/types"
)

type CourierHandler struct {
	couriers *courier.Service
}

func NewCourierHandler(svc *courier.Service) *CourierHandler {
	return &CourierHandler{couriers: svc}
}

type updateLocationReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (h *CourierHandler) UpdateLocation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing courier id")
		return
	}
	var req updateLocationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	active, err := h.couriers.UpdateLocation(c.Request.Context(), types.ID(id), req.Lat, req.Lng)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	resp := gin.H{"status": "ok"}
	if active != nil {
		resp["active_delivery"] = active
	}
	writeJSON(c, http.StatusOK, resp)
}

func (h *CourierHandler) GoOffline(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing courier id")
		return
	}
	if err := h.couriers.GoOffline(c.Request.Context(), types.ID(id)); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "offline"})
}
