package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deskshop/internal/logger"
	"deskshop/internal/models"
)

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(h *Handler, log *zap.Logger, allowedOrigins []string) *gin.Engine {
	models.SetupValidator()

	r := gin.New()
	r.Use(
		RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		CORS(allowedOrigins),
	)

	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/test", h.Diagnostics)
	r.GET("/schema", h.Schema)

	api := r.Group("/api")
	api.GET("/products", h.ListProducts)
	api.GET("/categories", h.ListCategories)
	api.POST("/orders", h.CreateOrder)

	return r
}
