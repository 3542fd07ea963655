package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/labstack-dev/labledger/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(stock *handlers.StockHandler, alerts *handlers.AlertsHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")
	{
		items := api.Group("/items/:id")
		items.POST("/stock/add", stock.AddStock)
		items.POST("/stock/remove", stock.RemoveStock)
		items.POST("/stock/move", stock.MoveStock)
		items.POST("/stock/adjust", stock.AdjustStock)
		items.GET("/history", stock.History)

		api.GET("/alerts/low-stock", alerts.LowStock)
		api.GET("/alerts/expiring", alerts.Expiring)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
