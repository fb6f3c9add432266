package deal

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/internal/repositories/deals"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Register registers stored deal routes
func Register(g *echo.Group) {
	g.GET("", ListDeals)
	g.GET("/statistics", GetStatistics)
	g.GET("/:id", GetDeal)
	g.DELETE("/expired", DeleteExpired)
}

// ListDeals lists stored deals ranked by score
func ListDeals(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "deal_handler.ListDeals")
	defer span.End()

	filter := deals.ListFilter{
		Store:    c.QueryParam("store"),
		Category: c.QueryParam("category"),
	}
	if raw := c.QueryParam("min_score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 100 {
			return httperror.NewHTTPError(http.StatusBadRequest, "min_score must be between 0 and 100")
		}
		filter.MinScore = v
	}
	if raw := c.QueryParam("page"); raw != "" {
		filter.Page, _ = strconv.Atoi(raw)
	}
	if raw := c.QueryParam("page_size"); raw != "" {
		filter.PageSize, _ = strconv.Atoi(raw)
	}

	ctx, repo, err := ectoinject.GetContext[*deals.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	resp, err := repo.List(ctx, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// GetDeal gets a stored deal by ID
func GetDeal(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "deal_handler.GetDeal")
	defer span.End()

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*deals.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	found, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if found == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "deal not found")
	}
	return c.JSON(http.StatusOK, found)
}

// GetStatistics summarizes the stored deal set
func GetStatistics(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "deal_handler.GetStatistics")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*deals.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	stats, err := repo.GetStatistics(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// DeleteExpired removes deals whose offer window has closed
func DeleteExpired(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "deal_handler.DeleteExpired")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*deals.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	removed, err := repo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"removed": removed})
}
