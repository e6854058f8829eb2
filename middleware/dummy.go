package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var dummyResponsesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "dummy_responses_total",
		Help: "Total requests short-circuited with a dummy response",
	},
)

// DummyConfig configures the dummy-response middleware.
type DummyConfig struct {
	// Active short-circuits every request when true.
	Active bool
	// Payload is the fixed response body, serialized as JSON.
	Payload any
	// Status is the response status code. Defaults to 200.
	Status int
}

// Dummy returns middleware that, when active, responds with the fixed
// payload and never invokes the wrapped handler. When inactive the handler
// runs normally and its result is returned unchanged.
func Dummy(active bool, payload any) echo.MiddlewareFunc {
	return DummyWithConfig(DummyConfig{Active: active, Payload: payload})
}

// DummyWithConfig returns Dummy middleware with a custom configuration.
func DummyWithConfig(config DummyConfig) echo.MiddlewareFunc {
	if config.Status == 0 {
		config.Status = http.StatusOK
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !config.Active {
				return next(c)
			}
			dummyResponsesTotal.Inc()
			return c.JSON(config.Status, config.Payload)
		}
	}
}
