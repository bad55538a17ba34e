// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parkdesk/internal/http/handlers"
	"parkdesk/internal/http/middleware"
	"parkdesk/internal/types"
)

func NewRouter(deps ServerDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Logger), middleware.Logging(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api", middleware.Role())
	admin := middleware.RequireRole(types.RoleAdmin)

	vehicles := handlers.NewVehicleHandler(deps.Parking)
	api.POST("/vehicles/entry", vehicles.Entry)
	api.POST("/vehicles/exit", vehicles.Exit)
	api.GET("/vehicles", vehicles.List)
	api.GET("/vehicles/:id", vehicles.Get)
	api.GET("/vehicles/:id/quote", vehicles.Quote)

	spaceHandler := handlers.NewSpaceHandler(deps.Parking)
	api.GET("/spaces", spaceHandler.List)
	api.GET("/spaces/occupancy", spaceHandler.Occupancy)
	api.POST("/spaces/:id/block", admin, spaceHandler.ToggleBlock)
	api.POST("/spaces/:id/reserve", admin, spaceHandler.Reserve)
	api.POST("/spaces/:id/unreserve", admin, spaceHandler.Unreserve)

	quotes := handlers.NewQuoteHandler(deps.Pricing)
	api.POST("/quotes", quotes.Estimate)
	api.GET("/plates/:plate", quotes.DetectPlate)

	subs := handlers.NewSubscriptionHandler(deps.Parking)
	api.GET("/subscriptions", subs.List)
	api.POST("/subscriptions", subs.Create)
	api.POST("/subscriptions/refresh", admin, subs.Refresh)
	api.GET("/subscriptions/:id", subs.Get)
	api.POST("/subscriptions/:id/pay", subs.Pay)
	api.DELETE("/subscriptions/:id", admin, subs.Delete)

	reports := handlers.NewReportHandler(deps.Parking, deps.Now, deps.Location)
	api.GET("/payments", admin, reports.Payments)
	api.GET("/reports/summary", admin, reports.Summary)
	api.GET("/reports/income", admin, reports.Income)
	api.GET("/reports/payments.csv", admin, reports.ExportCSV)
	api.GET("/reports/export.json", admin, reports.ExportJSON)

	cfg := handlers.NewConfigHandler(deps.Parking)
	api.GET("/config", cfg.Get)
	api.PUT("/config", admin, cfg.Update)

	return r
}
