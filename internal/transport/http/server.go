package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"research-rag/internal/bootstrap"
	"research-rag/internal/transport/http/handler"
	"research-rag/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(requestLogger(), gin.Recovery())
	router.MaxMultipartMemory = app.Config.MaxUploadBytes()

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	authHandler := handler.NewAuthHandler(app.Services.Auth)
	paperHandler := handler.NewPaperHandler(app.Services.Paper, app.Config.MaxUploadBytes())
	insightHandler := handler.NewInsightHandler(app.Services.Insight)
	workspaceHandler := handler.NewWorkspaceHandler(app.Services.Workspace)
	requireAuth := middleware.AuthJWT(app.Config.Auth.JWTSecret)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", requireAuth, authHandler.Me)

	papers := v1.Group("/papers", requireAuth)
	papers.POST("", paperHandler.Upload)
	papers.POST("/batch", paperHandler.UploadBatch)
	papers.POST("/text", paperHandler.CreateFromText)
	papers.GET("", paperHandler.List)
	papers.GET("/:id", paperHandler.Get)
	papers.DELETE("/:id", paperHandler.Delete)

	workspace := v1.Group("", requireAuth)
	workspace.GET("/notes", workspaceHandler.GetNote)
	workspace.PUT("/notes", workspaceHandler.SaveNote)
	workspace.GET("/whiteboard", workspaceHandler.GetWhiteboard)
	workspace.PUT("/whiteboard", workspaceHandler.SaveWhiteboard)

	insights := v1.Group("/insights", requireAuth)
	insights.POST("", insightHandler.Ask)
	insights.GET("/history", insightHandler.History)

	return router
}

// requestLogger writes one zerolog line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= 500 {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}
