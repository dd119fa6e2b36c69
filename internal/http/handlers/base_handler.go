// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quickcart/internal/geo"
	"quickcart/internal/modules/assignment"
	"quickcart/internal/modules/courier"
	"quickcart/internal/modules/matching"
	"quickcart/internal/modules/order"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeDomainError maps module sentinels onto HTTP statuses. Anything
// unmapped is a 500 with the detail kept out of the response body.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, geo.ErrInvalidCoordinates):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound), errors.Is(err, courier.ErrPartnerNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrPrecondition), errors.Is(err, matching.ErrVendorLocationMissing):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, assignment.ErrNoAvailablePartners):
		writeJSON(c, http.StatusConflict, errorResponse{Error: err.Error(), Code: "no_available_partners"})
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
