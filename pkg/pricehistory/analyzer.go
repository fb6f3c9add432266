package pricehistory

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// mrpInflationTolerance is the ceiling multiplier above the highest
// legitimately observed MRP before a claimed MRP counts as fake.
const mrpInflationTolerance = 1.20

// trendDelta is the relative half-over-half change needed before the
// trend reads rising or falling instead of stable.
const trendDelta = 0.05

// Analyzer derives authenticity signals from a product's price history.
type Analyzer struct {
	repo   Repository
	logger ectologger.Logger
	now    func() time.Time
}

// NewAnalyzer creates an Analyzer over the given repository.
func NewAnalyzer(repo Repository, logger ectologger.Logger) *Analyzer {
	return &Analyzer{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Record appends an observation for the key. Observations with a
// negative price or an MRP below the price are still recorded but
// flagged anomalous so they never feed the fake-discount ceiling.
func (a *Analyzer) Record(ctx context.Context, key string, price float64, mrp *float64, observedAt time.Time, source models.Source) error {
	ctx, span := tracing.StartSpan(ctx, "pricehistory.Analyzer.Record")
	defer span.End()

	anomalous := price < 0 || (mrp != nil && *mrp < price)
	if anomalous {
		a.logger.WithContext(ctx).WithFields(map[string]any{
			"product_key": key,
			"price":       price,
		}).Warn("recording anomalous price observation")
	}

	obs := models.PriceObservation{
		ProductKey: key,
		Price:      price,
		MRP:        mrp,
		Source:     source,
		Anomalous:  anomalous,
		ObservedAt: observedAt.UTC(),
	}

	if err := a.repo.Append(ctx, obs); err != nil {
		a.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_key": key,
		}).Error("failed to append price observation")
		return err
	}
	return nil
}

// ComputeInsights derives PriceInsights for a claimed price and MRP
// against the key's history. With no history every flag stays neutral;
// callers must not penalize a candidate for missing history.
func (a *Analyzer) ComputeInsights(ctx context.Context, key string, claimedPrice float64, claimedMRP *float64) (models.PriceInsights, error) {
	ctx, span := tracing.StartSpan(ctx, "pricehistory.Analyzer.ComputeInsights")
	defer span.End()

	now := a.now().UTC()
	since := now.AddDate(0, 0, -RetentionDays)

	series, err := a.repo.Query(ctx, key, since)
	if err != nil {
		a.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_key": key,
		}).Error("failed to query price history")
		return models.PriceInsights{}, err
	}

	insights := models.PriceInsights{
		ProductKey:   key,
		CurrentPrice: claimedPrice,
		Observations: len(series),
		Trend:        models.TrendUnknown,
	}
	if len(series) == 0 {
		return insights, nil
	}
	insights.HasHistory = true

	lowest, highest, sum := series[0].Price, series[0].Price, 0.0
	var maxMRP *float64
	for _, obs := range series {
		if obs.Price < lowest {
			lowest = obs.Price
		}
		if obs.Price > highest {
			highest = obs.Price
		}
		sum += obs.Price
		// anomalous observations never raise the MRP ceiling
		if !obs.Anomalous && obs.MRP != nil {
			if maxMRP == nil || *obs.MRP > *maxMRP {
				v := *obs.MRP
				maxMRP = &v
			}
		}
	}
	avg := sum / float64(len(series))
	insights.LowestPrice = &lowest
	insights.HighestPrice = &highest
	insights.AveragePrice = &avg
	insights.HistoricalMaxMRP = maxMRP

	insights.IsHistoricalLow = claimedPrice <= lowest
	if claimedMRP != nil && maxMRP != nil {
		insights.IsFakeDiscount = *claimedMRP > *maxMRP*mrpInflationTolerance
	}

	insights.PriceDrop7d = priceDrop(series, now.AddDate(0, 0, -7), claimedPrice)
	insights.PriceDrop30d = priceDrop(series, now.AddDate(0, 0, -30), claimedPrice)
	insights.Trend = trend(series, now)

	return insights, nil
}

// priceDrop compares the claimed price against the nearest observation
// at or before the cutoff. Nil when no observation is that old.
// Negative values mean the price went up.
func priceDrop(series []models.PriceObservation, cutoff time.Time, claimedPrice float64) *float64 {
	var ref *models.PriceObservation
	for i := range series {
		if series[i].ObservedAt.After(cutoff) {
			break
		}
		ref = &series[i]
	}
	if ref == nil || ref.Price <= 0 {
		return nil
	}
	drop := (ref.Price - claimedPrice) / ref.Price * 100
	return &drop
}

// trend splits the last 30 days at the window midpoint and compares the
// mean price of each half.
func trend(series []models.PriceObservation, now time.Time) models.Trend {
	windowStart := now.AddDate(0, 0, -30)
	midpoint := now.Add(-15 * 24 * time.Hour)

	var firstSum, secondSum float64
	var firstN, secondN int
	for _, obs := range series {
		if obs.ObservedAt.Before(windowStart) {
			continue
		}
		if obs.ObservedAt.Before(midpoint) {
			firstSum += obs.Price
			firstN++
		} else {
			secondSum += obs.Price
			secondN++
		}
	}

	if firstN+secondN < 2 || firstN == 0 || secondN == 0 {
		return models.TrendUnknown
	}

	firstMean := firstSum / float64(firstN)
	secondMean := secondSum / float64(secondN)
	if firstMean <= 0 {
		return models.TrendUnknown
	}

	change := (secondMean - firstMean) / firstMean
	switch {
	case change > trendDelta:
		return models.TrendRising
	case change < -trendDelta:
		return models.TrendFalling
	default:
		return models.TrendStable
	}
}
