// Package middleware provides Echo middleware for guarding route handlers:
// a header-based API-key check and a dummy-response short-circuit.
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HeaderAPIKey is the default header carrying the API key.
const HeaderAPIKey = "X-API-Key"

var apiKeyRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "apikey_rejections_total",
		Help: "Total requests rejected by the API key middleware",
	},
)

// APIKeyConfig configures the API key middleware.
type APIKeyConfig struct {
	// Key is the expected API key. Compared for exact, case-sensitive
	// equality against the header value.
	Key string
	// Header is the request header to read. Defaults to HeaderAPIKey.
	Header string
}

// unauthorizedBody is the fixed response for missing or mismatched keys.
var unauthorizedBody = map[string]string{"error": "Unauthorized"}

// APIKey returns middleware that invokes the wrapped handler only when the
// X-API-Key request header equals key. Otherwise it responds with 401 and
// a fixed JSON body without calling the handler.
func APIKey(key string) echo.MiddlewareFunc {
	return APIKeyWithConfig(APIKeyConfig{Key: key})
}

// APIKeyWithConfig returns APIKey middleware with a custom configuration.
func APIKeyWithConfig(config APIKeyConfig) echo.MiddlewareFunc {
	if config.Header == "" {
		config.Header = HeaderAPIKey
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			value := c.Request().Header.Get(config.Header)
			if value == "" || value != config.Key {
				apiKeyRejectionsTotal.Inc()
				return c.JSON(http.StatusUnauthorized, unauthorizedBody)
			}
			return next(c)
		}
	}
}
