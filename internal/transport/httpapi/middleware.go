package httpapi

import (
	"browser-automator/internal/entity"
	"browser-automator/internal/metrics"
	"browser-automator/pkg/logg"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// requestLogger logs one line per request after the handler ran.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String(logg.URL, c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("Request finished", fields...)

			return
		}

		logger.Info("Request finished", fields...)
	}
}

// collectMetrics records every request under its route template so unmatched paths share one label.
func collectMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// rateLimit applies one process-wide token bucket. Each automation request drives a real
// browser, so the ceiling is global rather than per client.
func rateLimit(limit float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(limit), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, failureEnvelope("rate limit exceeded"))

			return
		}

		c.Next()
	}
}

func failureEnvelope(message string) *entity.ResultEnvelope {
	return &entity.ResultEnvelope{
		Success: false,
		Results: []string{entity.SystemError(errors.New(message)).String()},
		Error:   message,
	}
}
