package keepalive

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse is the JSON body served on / and /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Bot       string `json:"bot"`
	// Uptime is in whole seconds.
	Uptime int64 `json:"uptime"`
}

func (s *Server) newEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), accessLog(s.logger))

	engine.GET("/", s.health)
	engine.GET("/health", s.health)
	engine.GET("/status", s.statusText)
	engine.GET("/ping", s.ping)

	return engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "alive",
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Bot:       s.botName,
		Uptime:    int64(s.Uptime() / time.Second),
	})
}

func (s *Server) statusText(c *gin.Context) {
	c.String(http.StatusOK, fmt.Sprintf("%s is running (bot: %s, uptime: %s)",
		s.botName, s.status.Status(), s.Uptime().Truncate(time.Second)))
}

func (s *Server) ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

// accessLog logs one entry per request. Monitors poll often, so entries are
// at debug level unless the response is an error.
func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP Request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("HTTP Request", fields...)
		default:
			logger.Debug("HTTP Request", fields...)
		}
	}
}
