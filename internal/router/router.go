package router

import (
	"github.com/gin-gonic/gin"

	"billscan/internal/config"
	"billscan/internal/handler"
	"billscan/internal/middleware"
)

// Setup builds the gin engine with middleware and routes.
func Setup(cfg *config.Config, extractHandler *handler.ExtractHandler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	healthHandler := handler.NewHealthHandler()
	r.GET("/", healthHandler.Info)
	r.GET("/healthz", healthHandler.Healthz)

	r.POST("/extract-bill-data", extractHandler.ExtractBillData)

	return r
}
