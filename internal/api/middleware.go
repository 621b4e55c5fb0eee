package api

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"factcheck/internal/logging"
	"factcheck/internal/services"
)

// HeaderRequestID carries the correlation identifier in both directions.
const HeaderRequestID = "X-Request-ID"

const defaultOrigin = "http://localhost:3000"

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", HeaderRequestID},
		ExposeHeaders:    []string{HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	cleaned := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			cleaned = nil
			break
		}
		if origin != "" {
			cleaned = append(cleaned, origin)
		}
	}
	if !cfg.AllowAllOrigins {
		if len(cleaned) == 0 {
			cleaned = []string{defaultOrigin}
		}
		cfg.AllowOrigins = cleaned
	}
	return cors.New(cfg)
}

// requestID attaches a correlation identifier to the request context and echoes it back.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(services.WithRequestID(c.Request.Context(), id))
		c.Set("request_id", id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		reqLogger := logging.WithContext(c.Request.Context(), logger)
		attrs := logging.Args(
			logging.String("method", strings.ToUpper(c.Request.Method)),
			logging.String("path", path),
			logging.Int("status", status),
			logging.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		switch {
		case status >= 500:
			reqLogger.Error("http request", attrs...)
		case status >= 400:
			reqLogger.Warn("http request", attrs...)
		default:
			reqLogger.Debug("http request", attrs...)
		}
	}
}

// bearerAuth requires "Authorization: Bearer <token>". An empty token disables the check.
func bearerAuth(token string) gin.HandlerFunc {
	token = strings.TrimSpace(token)
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			respondError(c, http.StatusUnauthorized, CodeUnauthorized, errors.New("unauthorized"))
			return
		}
		presented := strings.TrimPrefix(auth, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			respondError(c, http.StatusUnauthorized, CodeUnauthorized, errors.New("unauthorized"))
			return
		}
		c.Next()
	}
}

// rateLimit applies one token bucket shared by all callers. A non-positive
// requestsPerMinute disables limiting.
func rateLimit(requestsPerMinute, burst int) gin.HandlerFunc {
	if requestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "60")
			respondError(c, http.StatusTooManyRequests, CodeRateLimited, errors.New("too many requests"))
			return
		}
		c.Next()
	}
}
