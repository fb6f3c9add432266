package evaluate

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/internal/repositories/deals"
	"github.com/Ramsey-B/clover/pkg/engine"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

var validate = validator.New()

// Register registers candidate evaluation routes
func Register(g *echo.Group) {
	g.POST("", EvaluateCandidate)
}

// EvaluateCandidate runs a candidate through the confidence gate and,
// on acceptance, persists the scored deal. Rejection is a 200 with the
// breakdown, not an error.
func EvaluateCandidate(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "evaluate_handler.EvaluateCandidate")
	defer span.End()

	var req models.EvaluateRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.Candidate.Title == "" && req.Candidate.Link == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "candidate requires at least a title or a link")
	}

	ctx, eng, err := ectoinject.GetContext[*engine.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	result, err := eng.Evaluate(ctx, req.Candidate, req.Verification)
	if err != nil {
		return err
	}

	metrics.RecordEvaluation(req.Candidate.Store, string(req.Candidate.Source), result.Accepted, result.Confidence.Score)

	if !result.Accepted {
		emitRejection(c, req.Candidate, result.Confidence)
		return c.JSON(http.StatusOK, result)
	}

	metrics.RecordQuality(result.Deal.Store, result.Deal.DealGrade, result.Deal.DealScore)
	if result.Insights != nil {
		if result.Insights.IsFakeDiscount {
			metrics.FakeDiscountsDetected.WithLabelValues(result.Deal.Store).Inc()
		}
		if result.Insights.IsHistoricalLow {
			metrics.HistoricalLows.WithLabelValues(result.Deal.Store).Inc()
		}
	}

	ctx, repo, err := ectoinject.GetContext[*deals.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	saved, err := repo.Save(ctx, *result.Deal)
	if err != nil {
		return err
	}
	result.Deal = saved.Deal

	ctx, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	if emitter != nil && saved.IsChanged {
		if err := emitter.EmitDealAccepted(ctx, result); err != nil {
			logWarn(c, "failed to emit deal.accepted event")
		}
	}

	return c.JSON(http.StatusOK, result)
}

func emitRejection(c echo.Context, candidate models.RawCandidate, conf models.ConfidenceScore) {
	ctx := c.Request().Context()
	ctx, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	if emitter == nil {
		return
	}
	if err := emitter.EmitDealRejected(ctx, candidate, conf); err != nil {
		logWarn(c, "failed to emit deal.rejected event")
	}
}

func logWarn(c echo.Context, msg string) {
	ctx := c.Request().Context()
	ctx, logger, _ := ectoinject.GetContext[ectologger.Logger](ctx)
	if logger != nil {
		logger.WithContext(ctx).Warn(msg)
	}
}
