package http

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ragchat/src/log"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "requestId"
)

// RequestID tags each request with an ID, reusing one sent by the client.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request through the global logger.
func RequestLogger() gin.HandlerFunc {
	logger := log.WithName("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		kv := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"requestId", c.GetString(requestIDKey),
		}
		if len(c.Errors) > 0 {
			logger.Error(c.Errors.Last(), "Request failed", kv...)
			return
		}
		logger.Info("Request", kv...)
	}
}

// CORS allows the given origins. An empty list or "*" allows any origin.
func CORS(origins []string) (gin.HandlerFunc, error) {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = origins
	}
	cfg.AddAllowHeaders(SessionHeader, RequestIDHeader)
	cfg.AddExposeHeaders(RequestIDHeader)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cors config: %w", err)
	}
	return cors.New(cfg), nil
}

// NewRouter builds the engine with recovery, request IDs, logging and CORS.
func NewRouter(h *Handler, corsOrigins []string) (*gin.Engine, error) {
	corsMiddleware, err := CORS(corsOrigins)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(), corsMiddleware)
	h.RegisterRoutes(r)
	return r, nil
}
