package integration

import (
	"context"
	"testing"
	"time"

	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/pkg/engine"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/pricehistory"
)

func init() {
	_ = godotenv.Load("../../.env") // Try root .env
}

func ptr(v float64) *float64 { return &v }

func newPipeline(t *testing.T) (*engine.Engine, *pricehistory.Analyzer) {
	t.Helper()
	logger := zapadapter.NewZapEctoLogger(zap.NewNop(), nil)
	analyzer := pricehistory.NewAnalyzer(pricehistory.NewMemoryRepository(), logger)
	cfg := &config.Config{
		ConfidenceThreshold: 0.6,
		TitleMatchThreshold: 0.85,
		PriceMatchTolerance: 0.05,
		DedupeStrategy:      "best",
		OfferTTLDays:        7,
	}
	return engine.New(cfg, analyzer, nil, nil, logger), analyzer
}

func verifiedCandidate(id, store, link, title string, price, mrp float64) (models.RawCandidate, *models.VerificationInfo) {
	candidate := models.RawCandidate{
		ID:           id,
		Source:       models.SourceChat,
		Store:        store,
		Title:        title,
		Link:         link,
		ClaimedPrice: ptr(price),
		ClaimedMRP:   ptr(mrp),
		DetectedAt:   time.Now().UTC(),
	}
	verification := &models.VerificationInfo{
		Method:        models.VerificationScrape,
		VerifiedTitle: title,
		VerifiedPrice: ptr(price),
		VerifiedMRP:   ptr(mrp),
		Verdict:       &models.LLMVerdict{Verified: true, PriceMatch: true},
		VerifiedAt:    time.Now().UTC(),
	}
	return candidate, verification
}

func TestPipeline_EvaluateThenResolve(t *testing.T) {
	eng, _ := newPipeline(t)
	ctx := context.Background()

	// the same product posted through two different affiliate links,
	// plus an unrelated product
	c1, v1 := verifiedCandidate("c1", "amazon",
		"https://www.amazon.in/dp/B09XS7JWHH?tag=aff1-21",
		"Sony WH-1000XM5 Wireless Headphones", 19990, 29990)
	c2, v2 := verifiedCandidate("c2", "amazon",
		"https://amazon.in/Sony-WH-1000XM5/dp/B09XS7JWHH?tag=aff2-21",
		"Sony WH-1000XM5 Wireless Headphones", 19490, 29990)
	c3, v3 := verifiedCandidate("c3", "amazon",
		"https://www.amazon.in/dp/B0ABCD1234",
		"boAt Airdopes 141 Bluetooth Earbuds", 1099, 4490)

	var accepted []models.DealRecord
	for _, pair := range []struct {
		c models.RawCandidate
		v *models.VerificationInfo
	}{{c1, v1}, {c2, v2}, {c3, v3}} {
		result, err := eng.Evaluate(ctx, pair.c, pair.v)
		require.NoError(t, err)
		require.True(t, result.Accepted, "candidate %s should clear the gate", pair.c.ID)
		accepted = append(accepted, *result.Deal)
	}

	resolved := eng.ResolveBatch(ctx, accepted, "best")
	require.Len(t, resolved, 2)

	var headphones *models.CanonicalDeal
	for i := range resolved {
		if resolved[i].ProductKey == "amazon:B09XS7JWHH" {
			headphones = &resolved[i]
		}
	}
	require.NotNil(t, headphones)

	// best strategy keeps the cheaper posting and absorbs the other
	assert.Equal(t, "c2", headphones.ID)
	assert.Equal(t, 19490.0, headphones.VerifiedPrice)
	assert.Equal(t, 2, headphones.SourceCount)
	require.Len(t, headphones.AbsorbedSources, 1)
	assert.Equal(t, "c1", headphones.AbsorbedSources[0].DealID)
}

func TestPipeline_HistoryShapesLaterEvaluations(t *testing.T) {
	eng, analyzer := newPipeline(t)
	ctx := context.Background()

	key := "amazon:B09XS7JWHH"

	// a month of history at a higher price with an honest MRP
	for daysAgo := 30; daysAgo > 0; daysAgo -= 5 {
		err := analyzer.Record(ctx, key, 24990, ptr(29990),
			time.Now().UTC().AddDate(0, 0, -daysAgo), models.SourceChat)
		require.NoError(t, err)
	}

	// a genuine drop to a historical low
	c, v := verifiedCandidate("genuine", "amazon",
		"https://www.amazon.in/dp/B09XS7JWHH",
		"Sony WH-1000XM5 Wireless Headphones", 19990, 29990)
	result, err := eng.Evaluate(ctx, c, v)
	require.NoError(t, err)
	require.True(t, result.Accepted)

	assert.True(t, result.Insights.HasHistory)
	assert.True(t, result.Insights.IsHistoricalLow)
	assert.False(t, result.Insights.IsFakeDiscount)
	assert.True(t, result.Deal.IsHistoricalLow)
	require.NotNil(t, result.Insights.PriceDrop30d)
	assert.InDelta(t, 20.0, *result.Insights.PriceDrop30d, 0.1)

	// the same product with an inflated MRP is flagged
	c2, v2 := verifiedCandidate("inflated", "amazon",
		"https://www.amazon.in/dp/B09XS7JWHH",
		"Sony WH-1000XM5 Wireless Headphones", 19990, 59990)
	result2, err := eng.Evaluate(ctx, c2, v2)
	require.NoError(t, err)
	require.True(t, result2.Accepted)

	assert.True(t, result2.Insights.IsFakeDiscount)
	assert.True(t, result2.Deal.IsFakeDiscount)

	// fake discount caps the quality well below the genuine deal
	assert.Less(t, result2.Deal.DealScore, result.Deal.DealScore)
}

func TestPipeline_TextOnlyClaimsAreRejectedButRetainBreakdown(t *testing.T) {
	eng, _ := newPipeline(t)

	candidate := models.RawCandidate{
		ID:           "text-only",
		Source:       models.SourceChat,
		Store:        "flipkart",
		Title:        "Huge discount on laptops today only",
		ClaimedPrice: ptr(29990),
		DetectedAt:   time.Now().UTC(),
	}

	result, err := eng.Evaluate(context.Background(), candidate, nil)
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.NotEmpty(t, result.Confidence.Label)
	assert.Greater(t, result.Confidence.Score, 0.0)
	assert.Zero(t, result.Confidence.Breakdown.PriceMatch)
}

func TestPipeline_ResolveIsOrderIndependent(t *testing.T) {
	eng, _ := newPipeline(t)
	ctx := context.Background()

	mk := func(id, link, title string, price float64) models.DealRecord {
		return models.DealRecord{
			ID:            id,
			Title:         title,
			Store:         "amazon",
			Link:          link,
			Source:        models.SourceChat,
			VerifiedPrice: price,
			DetectedAt:    time.Now().UTC(),
		}
	}

	a := mk("a", "https://www.amazon.in/dp/B09XS7JWHH?tag=x", "Sony WH-1000XM5", 19990)
	b := mk("b", "https://amazon.in/dp/B09XS7JWHH?tag=y", "Sony WH-1000XM5", 19490)
	c := mk("c", "https://www.amazon.in/dp/B0ABCD1234", "boAt Airdopes 141", 1099)

	forward := eng.ResolveBatch(ctx, []models.DealRecord{a, b, c}, "best")
	backward := eng.ResolveBatch(ctx, []models.DealRecord{c, b, a}, "best")

	require.Equal(t, len(forward), len(backward))
	for i := range forward {
		assert.Equal(t, forward[i].ID, backward[i].ID)
		assert.Equal(t, forward[i].VerifiedPrice, backward[i].VerifiedPrice)
		assert.Equal(t, forward[i].SourceCount, backward[i].SourceCount)
	}
}
