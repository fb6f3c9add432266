package resolve

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/engine"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

var validate = validator.New()

// Register registers batch resolution routes
func Register(g *echo.Group) {
	g.POST("", ResolveBatch)
}

// ResolveBatch collapses a batch of accepted deals into canonical
// records, independent of input order.
func ResolveBatch(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "resolve_handler.ResolveBatch")
	defer span.End()

	var req models.ResolveRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if len(req.Deals) == 0 {
		return httperror.NewHTTPError(http.StatusBadRequest, "at least one deal is required")
	}

	ctx, eng, err := ectoinject.GetContext[*engine.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	canonical := eng.ResolveBatch(ctx, req.Deals, req.Strategy)

	collapsed := len(req.Deals) - len(canonical)
	metrics.RecordResolution(req.Strategy, len(canonical), collapsed)

	ctx, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	if emitter != nil {
		// best effort, the response is already computed
		_ = emitter.EmitBatchResolved(ctx, canonical)
	}

	return c.JSON(http.StatusOK, models.ResolveResponse{
		Deals:      canonical,
		InputCount: len(req.Deals),
		Collapsed:  collapsed,
	})
}
