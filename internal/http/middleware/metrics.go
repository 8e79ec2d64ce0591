package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mindmirror/mindmirror-backend/internal/observability"
)

// Metrics records status and latency per matched route. Nil m is a no-op.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		m.InflightInc()
		defer m.InflightDec()
		c.Next()
		m.ObserveAPI(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
