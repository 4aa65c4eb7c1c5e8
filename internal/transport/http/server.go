package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/flashsend/relay/internal/config"
	"github.com/flashsend/relay/internal/service/reply"
)

// NewServer builds the HTTP server with all API routes.
func NewServer(svc *reply.Service, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware())

	handlers := NewAPIHandlers(svc, logger)

	router.GET("/health", handlers.Health)

	api := router.Group("/api")
	{
		api.POST("/reply", handlers.Reply)
		api.POST("/markAsRead", handlers.MarkAsRead)
		api.POST("/sendNotification", handlers.SendNotification)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
