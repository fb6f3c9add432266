package insights

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/cache"
	"github.com/Ramsey-B/clover/pkg/engine"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Register registers price insight routes
func Register(g *echo.Group) {
	g.GET("", GetInsights)
}

// GetInsights is the read-only entry point over the analyzer. Results
// are cached; a miss recomputes from history.
func GetInsights(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "insights_handler.GetInsights")
	defer span.End()

	key := c.QueryParam("key")
	if key == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "key query parameter is required")
	}

	claimedPrice, err := strconv.ParseFloat(c.QueryParam("claimed_price"), 64)
	if err != nil || claimedPrice <= 0 {
		return httperror.NewHTTPError(http.StatusBadRequest, "claimed_price query parameter must be a positive number")
	}

	var claimedMRP *float64
	if raw := c.QueryParam("claimed_mrp"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			return httperror.NewHTTPError(http.StatusBadRequest, "claimed_mrp query parameter must be a positive number")
		}
		claimedMRP = &v
	}

	ctx, insightCache, _ := ectoinject.GetContext[*cache.Client](ctx)
	if insightCache != nil {
		if cached, err := insightCache.GetInsights(ctx, key, claimedPrice, claimedMRP); err == nil && cached != nil {
			metrics.InsightCacheHits.WithLabelValues("hit").Inc()
			return c.JSON(http.StatusOK, cached)
		}
		metrics.InsightCacheHits.WithLabelValues("miss").Inc()
	}

	ctx, eng, err := ectoinject.GetContext[*engine.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	result, err := eng.GetPriceInsights(ctx, key, claimedPrice, claimedMRP)
	if err != nil {
		return err
	}

	if insightCache != nil {
		// best effort, the next read just recomputes
		_ = insightCache.SetInsights(ctx, claimedPrice, claimedMRP, result)
	}

	return c.JSON(http.StatusOK, result)
}
