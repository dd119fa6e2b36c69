// README: Geo handlers: service-area resolution and address validation.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quickcart/internal/modules/servicearea"
	"quickcart/internal/types"
)

type GeoHandler struct {
	resolver *servicearea.Resolver
}

func NewGeoHandler(resolver *servicearea.Resolver) *GeoHandler {
	return &GeoHandler{resolver: resolver}
}

func parseLatLng(c *gin.Context) (float64, float64, bool) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		writeError(c, http.StatusBadRequest, "lat and lng must be numbers")
		return 0, 0, false
	}
	return lat, lng, true
}

func (h *GeoHandler) ResolveServiceArea(c *gin.Context) {
	lat, lng, ok := parseLatLng(c)
	if !ok {
		return
	}
	res, err := h.resolver.ResolveForPoint(c.Request.Context(), types.Point{Lat: lat, Lng: lng})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

type validateAddressReq struct {
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Address   string   `json:"address"`
	AddressID string   `json:"address_id"`
}

func (h *GeoHandler) ValidateAddress(c *gin.Context) {
	var req validateAddressReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	v := servicearea.AddressValidation{Address: req.Address}
	if req.Lat != nil && req.Lng != nil {
		v.Point = &types.Point{Lat: *req.Lat, Lng: *req.Lng}
	}
	if req.AddressID != "" {
		id := types.ID(req.AddressID)
		v.AddressID = &id
	}
	res, err := h.resolver.ValidateAddress(c.Request.Context(), v)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}
