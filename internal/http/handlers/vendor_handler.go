// README: Vendor discovery handler.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quickcart/internal/modules/servicearea"
	"quickcart/internal/modules/vendor"
	"quickcart/internal/types"
)

type VendorHandler struct {
	discovery *vendor.Discovery
	resolver  *servicearea.Resolver
}

func NewVendorHandler(discovery *vendor.Discovery, resolver *servicearea.Resolver) *VendorHandler {
	return &VendorHandler{discovery: discovery, resolver: resolver}
}

func (h *VendorHandler) Nearby(c *gin.Context) {
	lat, lng, ok := parseLatLng(c)
	if !ok {
		return
	}

	maxKm := 0.0
	if raw := c.Query("max_km"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(c, http.StatusBadRequest, "max_km must be a number")
			return
		}
		maxKm = v
	}
	var categoryID *types.ID
	if raw := c.Query("category_id"); raw != "" {
		id := types.ID(raw)
		categoryID = &id
	}

	p := types.Point{Lat: lat, Lng: lng}
	results, err := h.discovery.FindNear(c.Request.Context(), p, maxKm, categoryID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	resp := gin.H{"vendors": results, "count": len(results)}
	// The caller's own area is side information; resolution failures here
	// must not break discovery.
	if res, err := h.resolver.ResolveForPoint(c.Request.Context(), p); err == nil && res.IsServiceable {
		resp["service_area"] = res.Area
	}
	writeJSON(c, http.StatusOK, resp)
}
