package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/polkiloo/paygate/internal/config"
	"github.com/polkiloo/paygate/internal/server/http/handlers"
	"github.com/polkiloo/paygate/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.PaymentFacade, gatherer prometheus.Gatherer, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest(handlers.MaxWebhookBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	checkoutHandler := handlers.NewCheckoutHandler(facade)
	webhookHandler := handlers.NewWebhookHandler(facade, cfg.SignatureHeader)
	catalogHandler := handlers.NewCatalogHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	api := engine.Group("/api")

	checkout := api.Group("/checkout")
	checkout.Use(middleware.CORS())
	checkout.POST("/session", checkoutHandler.Create)
	checkout.OPTIONS("/session", checkoutHandler.Preflight)

	api.POST("/webhooks/stripe", webhookHandler.Receive)
	api.GET("/products", catalogHandler.List)
	api.GET("/orders/status/:token", orderHandler.Status)
	api.GET("/health", healthHandler.Check)

	if gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return engine
}
