package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dkazarin/echoline-server/internal/auth"
	"github.com/dkazarin/echoline-server/internal/config"
	"github.com/dkazarin/echoline-server/internal/core"
	"github.com/dkazarin/echoline-server/internal/store"
)

// NewServer builds the HTTP server: REST API plus the WebSocket live channel.
func NewServer(hub *core.Hub, authService *auth.Service, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	apiHandlers := NewAPIHandlers(authService, logger)
	userHandlers := NewUserHandlers(hub, st, logger)
	messageHandlers := NewMessageHandlers(hub, st, logger)

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, authService, logger)))

	limiter := newIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)

	api := router.Group("/api")
	api.POST("/register", RateLimitMiddleware(limiter, cfg.TrustProxyHeaders), apiHandlers.Register)
	api.POST("/login", RateLimitMiddleware(limiter, cfg.TrustProxyHeaders), apiHandlers.Login)

	authorized := api.Group("", AuthMiddleware(authService, logger))
	authorized.GET("/users", userHandlers.ListUsers)
	authorized.PUT("/status", userHandlers.UpdateStatus)
	authorized.GET("/conversations", messageHandlers.ListConversations)
	authorized.GET("/messages/:userID", messageHandlers.GetConversation)
	authorized.POST("/messages", messageHandlers.Send)
	authorized.POST("/messages/:id/read", messageHandlers.MarkRead)
	authorized.POST("/conversations/:userID/read", messageHandlers.MarkConversationRead)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
