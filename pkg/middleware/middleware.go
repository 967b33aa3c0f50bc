// Package middleware holds the gin middleware chain, probe handlers and request
// validation shared by the zone-service API.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/location-manager/zone-service/pkg/errors"
)

// Config holds middleware configuration
type Config struct {
	Logger      *slog.Logger
	ServiceName string
	// AllowedOrigins lists browser origins allowed by CORS. "*" allows any;
	// an empty list disables CORS headers.
	AllowedOrigins []string
	TrustedProxies []string
	// Errors maps errors attached with c.Error. Nil maps everything to 500.
	Errors *errors.Mapper
}

// DefaultConfig allows any origin
func DefaultConfig(serviceName string, logger *slog.Logger) *Config {
	return &Config{
		Logger:         logger,
		ServiceName:    serviceName,
		AllowedOrigins: []string{"*"},
	}
}

// Setup installs the standard chain on router
func Setup(router *gin.Engine, config *Config) {
	InitValidator()

	if len(config.TrustedProxies) > 0 {
		_ = router.SetTrustedProxies(config.TrustedProxies)
	}

	router.Use(
		Recovery(config.Logger),
		RequestID(),
		CorrelationID(),
		Logger(config.Logger),
		InputSanitizer(),
	)
	if len(config.AllowedOrigins) > 0 {
		router.Use(CORS(config.AllowedOrigins))
	}
	router.Use(ContentType(), ErrorHandler(config.Logger, config.Errors))
}

// CORS lets the storefront and back office call the API from a browser
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		_, ok := allowed[origin]
		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case ok:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		default:
			c.Next()
			return
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-Correlation-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, X-Correlation-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// HealthCheck answers liveness probes
func HealthCheck(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
	}
}

// Probe is one dependency checked by ReadinessCheck. An optional probe that
// fails marks the service degraded but still ready.
type Probe struct {
	Name     string
	Check    func(ctx context.Context) error
	Optional bool
}

// probeTimeout bounds each dependency check
const probeTimeout = 2 * time.Second

// ReadinessCheck runs every probe and reports 503 when a required one fails
func ReadinessCheck(serviceName string, probes ...Probe) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ready"
		code := http.StatusOK
		checks := make(map[string]string, len(probes))

		for _, probe := range probes {
			ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
			err := probe.Check(ctx)
			cancel()

			if err == nil {
				checks[probe.Name] = "ok"
				continue
			}
			checks[probe.Name] = err.Error()
			if probe.Optional {
				if code == http.StatusOK {
					status = "degraded"
				}
				continue
			}
			status = "not ready"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{"status": status, "service": serviceName, "checks": checks})
	}
}

// NoRoute answers unknown paths with the API error body
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		writeError(c, errors.NewAppError("ROUTE_NOT_FOUND", "The requested resource was not found", http.StatusNotFound), false)
	}
}

// NoMethod answers known paths called with an unsupported method
func NoMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		writeError(c, errors.NewAppError("METHOD_NOT_ALLOWED", "The request method is not supported for this resource", http.StatusMethodNotAllowed), false)
	}
}
