package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/wastage/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.FormHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/catalog", handler.Catalog)

	form := r.Group("/form")
	form.GET("", handler.Get)
	form.GET("/events", handler.Events)

	form.PUT("/store", handler.SetStore)
	form.PUT("/employee", handler.SetEmployee)
	form.PUT("/comment", handler.SetComment)

	form.PUT("/quantities/*item", handler.SetQuantity)
	form.DELETE("/quantities/*item", handler.QuickReset)

	form.POST("/custom-items", handler.AddCustomItem)
	form.DELETE("/custom-items/*name", handler.RemoveCustomItem)

	form.POST("/edit", handler.StartEdit)
	form.PUT("/edit", handler.SaveEdit)
	form.DELETE("/edit", handler.CancelEdit)

	form.POST("/reset", handler.StartReset)
	form.POST("/reset/confirm", handler.ConfirmReset)
	form.POST("/reset/cancel", handler.CancelReset)

	form.POST("/submit", handler.Submit)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
