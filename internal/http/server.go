// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"quickcart/internal/http/handlers"
	"quickcart/internal/http/middleware"
	"quickcart/internal/modules/assignment"
	"quickcart/internal/modules/courier"
	"quickcart/internal/modules/matching"
	"quickcart/internal/modules/servicearea"
	"quickcart/internal/modules/vendor"
)

type ServerDeps struct {
	Resolver   *servicearea.Resolver
	Discovery  *vendor.Discovery
	Couriers   *courier.Service
	Matcher    *matching.Service
	Assignment *assignment.Engine
	Log        *slog.Logger
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Server{deps: deps}
}

func (s *Server) Routes() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(s.deps.Log))
	r.Use(middleware.Recovery(s.deps.Log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	geoHandler := handlers.NewGeoHandler(s.deps.Resolver)
	r.GET("/api/geo/service-area", geoHandler.ResolveServiceArea)
	r.POST("/api/addresses/validate", geoHandler.ValidateAddress)

	vendorHandler := handlers.NewVendorHandler(s.deps.Discovery, s.deps.Resolver)
	r.GET("/api/vendors/nearby", vendorHandler.Nearby)

	courierHandler := handlers.NewCourierHandler(s.deps.Couriers)
	r.PUT("/api/couriers/:id/location", courierHandler.UpdateLocation)
	r.POST("/api/couriers/:id/offline", courierHandler.GoOffline)

	dispatchHandler := handlers.NewDispatchHandler(s.deps.Matcher, s.deps.Assignment)
	r.POST("/api/orders/:id/notify-partners", dispatchHandler.NotifyPartners)
	r.POST("/api/orders/:id/retry-dispatch", dispatchHandler.RetryDispatch)
	r.POST("/api/orders/:id/cancel-notifications", dispatchHandler.CancelNotifications)
	r.POST("/api/orders/:id/assign", dispatchHandler.Assign)

	return r
}
