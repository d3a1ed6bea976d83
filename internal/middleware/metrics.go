package middleware

import (
	"time"

	"github.com/MohammedAshfaquem/smatdine-backend/prometheus"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware records HTTP request metrics
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)

		// Errors returned to echo are rendered later, use their status instead of the pending one
		status := c.Response().Status
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
		}

		prometheus.RecordHTTPRequest(c.Request().Method, c.Path(), status, time.Since(start))
		return err
	}
}
