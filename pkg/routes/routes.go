// Package routes mounts the Clover API surface on an echo instance.
package routes

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/clover/pkg/middleware"
	"github.com/Ramsey-B/clover/pkg/routes/deal"
	"github.com/Ramsey-B/clover/pkg/routes/evaluate"
	"github.com/Ramsey-B/clover/pkg/routes/insights"
	"github.com/Ramsey-B/clover/pkg/routes/resolve"
)

// Register installs the tracing middleware, the error handler and every
// route group. Health endpoints register separately since the checker
// carries its own dependencies.
func Register(e *echo.Echo, serviceName string, logger ectologger.Logger) {
	e.Use(otelecho.Middleware(serviceName))
	e.HTTPErrorHandler = middleware.Error(logger)

	api := e.Group("/api/v1")
	evaluate.Register(api.Group("/evaluate"))
	resolve.Register(api.Group("/resolve"))
	insights.Register(api.Group("/insights"))
	deal.Register(api.Group("/deals"))
}
