// Package engine orchestrates the deal intelligence pipeline: gate,
// price history, quality scoring and duplicate resolution.
package engine

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/pkg/categorize"
	"github.com/Ramsey-B/clover/pkg/confidence"
	"github.com/Ramsey-B/clover/pkg/dedupe"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/pricehistory"
	"github.com/Ramsey-B/clover/pkg/productkey"
	"github.com/Ramsey-B/clover/pkg/scoring"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/verifier"
)

// InsightInvalidator drops cached insights for a product once a new
// observation makes them stale. Satisfied by cache.Client.
type InsightInvalidator interface {
	InvalidateProduct(ctx context.Context, productKey string) error
}

// Engine runs candidates through admission, analysis and scoring, and
// resolves batches of accepted deals into canonical records.
type Engine struct {
	gate            *confidence.Gate
	analyzer        *pricehistory.Analyzer
	scorer          *scoring.Scorer
	resolver        *dedupe.Resolver
	categorizer     *categorize.Categorizer
	verifier        verifier.Verifier
	insights        InsightInvalidator
	logger          ectologger.Logger
	defaultStrategy dedupe.Strategy
	offerTTL        time.Duration
	now             func() time.Time
}

// New creates an Engine. The verifier may be nil; candidates are then
// scored text-only unless the caller supplies verification itself.
// insights may be nil when no cache is deployed.
func New(cfg *config.Config, analyzer *pricehistory.Analyzer, v verifier.Verifier, insights InsightInvalidator, logger ectologger.Logger) *Engine {
	return &Engine{
		gate:            confidence.NewGate(cfg.ConfidenceThreshold),
		analyzer:        analyzer,
		scorer:          scoring.NewScorer(),
		resolver:        dedupe.NewResolver(logger, cfg.TitleMatchThreshold, cfg.PriceMatchTolerance),
		categorizer:     categorize.NewCategorizer(),
		verifier:        v,
		insights:        insights,
		logger:          logger,
		defaultStrategy: dedupe.ParseStrategy(cfg.DedupeStrategy),
		offerTTL:        time.Duration(cfg.OfferTTLDays) * 24 * time.Hour,
		now:             time.Now,
	}
}

// Evaluate runs one candidate through the pipeline. When verification
// is nil and a verifier is configured, the engine asks it first; a
// verifier failure degrades to text-only scoring instead of failing
// the evaluation. Rejection is a normal outcome carrying the full
// confidence breakdown.
func (e *Engine) Evaluate(ctx context.Context, candidate models.RawCandidate, verification *models.VerificationInfo) (models.EvaluateResult, error) {
	ctx, span := tracing.StartSpan(ctx, "engine.Engine.Evaluate")
	defer span.End()

	if verification == nil && e.verifier != nil {
		v, err := e.verifier.Verify(ctx, candidate)
		if err != nil {
			e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"candidate_id": candidate.ID,
				"store":        candidate.Store,
			}).Warn("verifier unavailable, falling back to text-only scoring")
		} else {
			verification = v
		}
	}

	conf := e.gate.Evaluate(candidate, verification)
	if !conf.Passed {
		e.logger.WithContext(ctx).WithFields(map[string]any{
			"candidate_id": candidate.ID,
			"score":        conf.Score,
			"label":        conf.Label,
		}).Info("candidate rejected by confidence gate")
		return models.EvaluateResult{Accepted: false, Confidence: conf}, nil
	}

	price, mrp := effectivePricing(candidate, verification)
	if price <= 0 {
		// passed the gate on non-price signals but there is nothing
		// to record or rank
		e.logger.WithContext(ctx).WithFields(map[string]any{
			"candidate_id": candidate.ID,
		}).Warn("accepted candidate has no usable price, rejecting")
		conf.Passed = false
		return models.EvaluateResult{Accepted: false, Confidence: conf}, nil
	}

	key := productkey.ForDeal(candidate.Store, candidate.Link, candidate.Title)

	// insights reflect the history before this claim is recorded
	insights, err := e.analyzer.ComputeInsights(ctx, key.String(), price, mrp)
	if err != nil {
		return models.EvaluateResult{}, err
	}

	detectedAt := candidate.DetectedAt
	if detectedAt.IsZero() {
		detectedAt = e.now().UTC()
	}
	if err := e.analyzer.Record(ctx, key.String(), price, mrp, detectedAt, candidate.Source); err != nil {
		return models.EvaluateResult{}, err
	}

	if e.insights != nil {
		// best effort, a stale entry just lives out its TTL
		if err := e.insights.InvalidateProduct(ctx, key.String()); err != nil {
			e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"product_key": key.String(),
			}).Warn("failed to invalidate cached insights")
		}
	}

	deal := e.buildDeal(candidate, verification, key, price, mrp, conf, detectedAt)
	quality := e.scorer.Score(deal, insights)
	deal.DealScore = quality.Score
	deal.DealGrade = quality.Grade
	deal.IsHistoricalLow = insights.IsHistoricalLow
	deal.IsFakeDiscount = insights.IsFakeDiscount

	return models.EvaluateResult{
		Accepted:   true,
		Confidence: conf,
		Deal:       &deal,
		Quality:    &quality,
		Insights:   &insights,
	}, nil
}

// ResolveBatch collapses accepted deals into canonical records. An
// empty strategy uses the configured default.
func (e *Engine) ResolveBatch(ctx context.Context, deals []models.DealRecord, strategy string) []models.CanonicalDeal {
	ctx, span := tracing.StartSpan(ctx, "engine.Engine.ResolveBatch")
	defer span.End()

	resolved := e.defaultStrategy
	if strategy != "" {
		resolved = dedupe.ParseStrategy(strategy)
	}
	return e.resolver.Resolve(ctx, deals, resolved)
}

// GetPriceInsights is a read-only entry point over the analyzer.
func (e *Engine) GetPriceInsights(ctx context.Context, key string, claimedPrice float64, claimedMRP *float64) (models.PriceInsights, error) {
	ctx, span := tracing.StartSpan(ctx, "engine.Engine.GetPriceInsights")
	defer span.End()

	return e.analyzer.ComputeInsights(ctx, key, claimedPrice, claimedMRP)
}

// buildDeal assembles the persisted record shape from the candidate,
// its verification and the gate result.
func (e *Engine) buildDeal(
	candidate models.RawCandidate,
	verification *models.VerificationInfo,
	key productkey.Key,
	price float64,
	mrp *float64,
	conf models.ConfidenceScore,
	detectedAt time.Time,
) models.DealRecord {
	id := candidate.ID
	if id == "" {
		id = uuid.NewString()
	}

	title := candidate.Title
	if verification != nil && verification.VerifiedTitle != "" {
		title = verification.VerifiedTitle
	}

	deal := models.DealRecord{
		ID:              id,
		ProductKey:      key.String(),
		Title:           title,
		Store:           candidate.Store,
		Link:            candidate.Link,
		Category:        e.categorizer.Categorize(title),
		Source:          candidate.Source,
		VerifiedPrice:   price,
		VerifiedMRP:     mrp,
		Rating:          candidate.Rating,
		ReviewCount:     candidate.ReviewCount,
		ConfidenceScore: conf.Score,
		DealType:        dealType(candidate),
		StockStatus:     stockStatus(candidate, verification),
		SellerType:      candidate.Seller.Type(),
		Offers:          candidate.Offers,
		DetectedAt:      detectedAt,
	}

	if candidate.Seller != nil {
		deal.SellerName = candidate.Seller.Name
		deal.SellerRating = candidate.Seller.Rating
	}

	if mrp != nil && *mrp > price {
		discount := deal.DiscountPercent()
		deal.VerifiedDiscount = &discount
	}

	if deal.DealType != models.DealTypeRegular {
		end := detectedAt.Add(e.offerTTL)
		deal.OfferEndDate = &end
	}

	return deal
}

// effectivePricing prefers verified figures over claimed ones.
func effectivePricing(candidate models.RawCandidate, verification *models.VerificationInfo) (float64, *float64) {
	var price float64
	if verification.HasPriceData() {
		price = *verification.VerifiedPrice
	} else if candidate.ClaimedPrice != nil && *candidate.ClaimedPrice > 0 {
		price = *candidate.ClaimedPrice
	}

	var mrp *float64
	if verification != nil && verification.VerifiedMRP != nil && *verification.VerifiedMRP > 0 {
		v := *verification.VerifiedMRP
		mrp = &v
	} else if candidate.ClaimedMRP != nil && *candidate.ClaimedMRP > 0 {
		v := *candidate.ClaimedMRP
		mrp = &v
	}

	return price, mrp
}

func dealType(candidate models.RawCandidate) models.DealType {
	if candidate.DealType != "" {
		return candidate.DealType
	}
	return models.DealTypeRegular
}

func stockStatus(candidate models.RawCandidate, verification *models.VerificationInfo) string {
	if verification != nil && verification.Availability != "" {
		return verification.Availability
	}
	return candidate.StockStatus
}
