package middleware

import (
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/updrill-api/internal/metrics"
)

// RequestLogger логирует каждый запрос с пользователем и временем обработки
// и обновляет HTTP-метрики
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(latency.Seconds())

		userID := UserID(c)
		if userID == "" {
			userID = "anonymous"
		}
		log.Printf("[HTTP] %s %s %d %v user=%s ip=%s",
			c.Request.Method, c.Request.URL.Path, status, latency, userID, c.ClientIP())
	}
}
