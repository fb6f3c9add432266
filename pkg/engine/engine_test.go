package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/pricehistory"
	"github.com/Ramsey-B/clover/pkg/verifier"
)

func ptr(v float64) *float64 { return &v }

func testConfig() *config.Config {
	return &config.Config{
		ConfidenceThreshold: 0.6,
		TitleMatchThreshold: 0.85,
		PriceMatchTolerance: 0.05,
		DedupeStrategy:      "best",
		OfferTTLDays:        7,
	}
}

func newTestEngine(t *testing.T, v verifier.Verifier) (*Engine, *pricehistory.Analyzer) {
	t.Helper()
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	analyzer := pricehistory.NewAnalyzer(pricehistory.NewMemoryRepository(), logger)
	return New(testConfig(), analyzer, v, nil, logger), analyzer
}

func verifiedCandidate() (models.RawCandidate, *models.VerificationInfo) {
	candidate := models.RawCandidate{
		ID:           "cand-1",
		Source:       models.SourceChat,
		Store:        "amazon",
		Title:        "Sony WH-1000XM5 Wireless Headphones",
		Link:         "https://www.amazon.in/dp/B09XS7JWHH",
		ClaimedPrice: ptr(19990),
		ClaimedMRP:   ptr(29990),
		DealType:     models.DealTypeFlash,
		DetectedAt:   time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
	}
	verification := &models.VerificationInfo{
		Method:        models.VerificationScrape,
		VerifiedTitle: "Sony WH-1000XM5 Wireless Headphones",
		VerifiedPrice: ptr(19990),
		VerifiedMRP:   ptr(29990),
		Verdict:       &models.LLMVerdict{Verified: true, PriceMatch: true},
		VerifiedAt:    time.Now(),
	}
	return candidate, verification
}

func TestEvaluate_AcceptsVerifiedCandidate(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	candidate, verification := verifiedCandidate()

	result, err := e.Evaluate(context.Background(), candidate, verification)
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.True(t, result.Confidence.Passed)
	require.NotNil(t, result.Deal)
	require.NotNil(t, result.Quality)
	require.NotNil(t, result.Insights)

	deal := result.Deal
	assert.Equal(t, "amazon:B09XS7JWHH", deal.ProductKey)
	assert.Equal(t, "electronics", deal.Category)
	assert.Equal(t, 19990.0, deal.VerifiedPrice)
	assert.Equal(t, result.Quality.Score, deal.DealScore)
	assert.Equal(t, result.Quality.Grade, deal.DealGrade)
	require.NotNil(t, deal.VerifiedDiscount)
	assert.InDelta(t, 33.34, *deal.VerifiedDiscount, 0.01)

	// flash deals get an offer window
	require.NotNil(t, deal.OfferEndDate)
	assert.Equal(t, candidate.DetectedAt.Add(7*24*time.Hour), *deal.OfferEndDate)
}

func TestEvaluate_RejectsUnverifiedTextOnlyClaim(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	candidate, _ := verifiedCandidate()

	result, err := e.Evaluate(context.Background(), candidate, nil)
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.False(t, result.Confidence.Passed)
	assert.Nil(t, result.Deal)
	assert.Nil(t, result.Quality)
	assert.NotEmpty(t, result.Confidence.Label)
}

func TestEvaluate_RejectionIsNotAnError(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	result, err := e.Evaluate(context.Background(), models.RawCandidate{Title: "vague claim"}, nil)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
}

func TestEvaluate_UsesConfiguredVerifier(t *testing.T) {
	_, verification := verifiedCandidate()
	called := false
	v := verifier.Func(func(_ context.Context, _ models.RawCandidate) (*models.VerificationInfo, error) {
		called = true
		return verification, nil
	})

	e, _ := newTestEngine(t, v)
	candidate, _ := verifiedCandidate()

	result, err := e.Evaluate(context.Background(), candidate, nil)
	require.NoError(t, err)
	assert.True(t, called)
	assert.True(t, result.Accepted)
}

func TestEvaluate_VerifierFailureDegradesToTextOnly(t *testing.T) {
	v := verifier.Func(func(_ context.Context, _ models.RawCandidate) (*models.VerificationInfo, error) {
		return nil, errors.New("page timeout")
	})

	e, _ := newTestEngine(t, v)
	candidate, _ := verifiedCandidate()

	result, err := e.Evaluate(context.Background(), candidate, nil)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
}

func TestEvaluate_SuppliedVerificationSkipsVerifier(t *testing.T) {
	v := verifier.Func(func(_ context.Context, _ models.RawCandidate) (*models.VerificationInfo, error) {
		t.Fatal("verifier must not be called when verification is supplied")
		return nil, nil
	})

	e, _ := newTestEngine(t, v)
	candidate, verification := verifiedCandidate()

	result, err := e.Evaluate(context.Background(), candidate, verification)
	require.NoError(t, err)
	assert.True(t, result.Accepted)
}

func TestEvaluate_NoUsablePriceRejectsEvenPastTheGate(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	analyzer := pricehistory.NewAnalyzer(pricehistory.NewMemoryRepository(), logger)
	cfg := testConfig()
	cfg.ConfidenceThreshold = 0.5
	e := New(cfg, analyzer, nil, nil, logger)

	// title, MRP and link but no price anywhere can clear a low
	// threshold on non-price signals
	candidate := models.RawCandidate{
		Source:     models.SourceChat,
		Store:      "amazon",
		Title:      "Sony WH-1000XM5 Wireless Headphones",
		Link:       "https://www.amazon.in/dp/B09XS7JWHH",
		ClaimedMRP: ptr(29990),
	}
	verification := &models.VerificationInfo{
		Method:        models.VerificationScrape,
		VerifiedTitle: "Sony WH-1000XM5 Wireless Headphones",
	}

	result, err := e.Evaluate(context.Background(), candidate, verification)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.False(t, result.Confidence.Passed)
	assert.Nil(t, result.Deal)
}

func TestEvaluate_InsightsReflectHistoryBeforeThisClaim(t *testing.T) {
	e, analyzer := newTestEngine(t, nil)
	candidate, verification := verifiedCandidate()

	// seed an older, higher price
	err := analyzer.Record(context.Background(), "amazon:B09XS7JWHH", 24990, ptr(29990),
		time.Now().UTC().AddDate(0, 0, -10), models.SourceChat)
	require.NoError(t, err)

	result, err := e.Evaluate(context.Background(), candidate, verification)
	require.NoError(t, err)
	require.NotNil(t, result.Insights)

	// only the seeded observation counts; the claim itself is recorded
	// after the insights are taken
	assert.Equal(t, 1, result.Insights.Observations)
	assert.True(t, result.Insights.IsHistoricalLow)
	assert.True(t, result.Deal.IsHistoricalLow)
	assert.False(t, result.Deal.IsFakeDiscount)
}

func TestEvaluate_RecordsObservationForNextEvaluation(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	candidate, verification := verifiedCandidate()

	first, err := e.Evaluate(context.Background(), candidate, verification)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Insights.Observations)

	candidate.DetectedAt = candidate.DetectedAt.Add(time.Hour)
	second, err := e.Evaluate(context.Background(), candidate, verification)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Insights.Observations)
}

type recordingInvalidator struct {
	keys []string
	err  error
}

func (r *recordingInvalidator) InvalidateProduct(_ context.Context, productKey string) error {
	r.keys = append(r.keys, productKey)
	return r.err
}

func TestEvaluate_DropsCachedInsightsWhenObservationLands(t *testing.T) {
	inv := &recordingInvalidator{}
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	analyzer := pricehistory.NewAnalyzer(pricehistory.NewMemoryRepository(), logger)
	e := New(testConfig(), analyzer, nil, inv, logger)

	candidate, verification := verifiedCandidate()
	result, err := e.Evaluate(context.Background(), candidate, verification)
	require.NoError(t, err)
	require.True(t, result.Accepted)

	// cached insights for the product are stale the moment the new
	// observation is recorded
	assert.Equal(t, []string{"amazon:B09XS7JWHH"}, inv.keys)
}

func TestEvaluate_RejectionLeavesCachedInsightsAlone(t *testing.T) {
	inv := &recordingInvalidator{}
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	analyzer := pricehistory.NewAnalyzer(pricehistory.NewMemoryRepository(), logger)
	e := New(testConfig(), analyzer, nil, inv, logger)

	candidate, _ := verifiedCandidate()
	result, err := e.Evaluate(context.Background(), candidate, nil)
	require.NoError(t, err)
	require.False(t, result.Accepted)

	assert.Empty(t, inv.keys)
}

func TestEvaluate_InvalidationFailureDoesNotFailEvaluation(t *testing.T) {
	inv := &recordingInvalidator{err: errors.New("redis down")}
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	analyzer := pricehistory.NewAnalyzer(pricehistory.NewMemoryRepository(), logger)
	e := New(testConfig(), analyzer, nil, inv, logger)

	candidate, verification := verifiedCandidate()
	result, err := e.Evaluate(context.Background(), candidate, verification)
	require.NoError(t, err)
	assert.True(t, result.Accepted)
}

func TestEvaluate_GeneratesIDWhenMissing(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	candidate, verification := verifiedCandidate()
	candidate.ID = ""

	result, err := e.Evaluate(context.Background(), candidate, verification)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Deal.ID)
}

func TestResolveBatch_EmptyStrategyUsesDefault(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	link := "https://www.amazon.in/dp/B09XS7JWHH"
	deals := []models.DealRecord{
		{ID: "a", Title: "Sony WH-1000XM5", Store: "amazon", Link: link, VerifiedPrice: 18990, DetectedAt: time.Now()},
		{ID: "b", Title: "Sony WH-1000XM5", Store: "amazon", Link: link, VerifiedPrice: 19990, DetectedAt: time.Now()},
	}

	out := e.ResolveBatch(context.Background(), deals, "")
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ID)

	out = e.ResolveBatch(context.Background(), deals, "first")
	require.Len(t, out, 1)
}

func TestGetPriceInsights(t *testing.T) {
	e, analyzer := newTestEngine(t, nil)

	err := analyzer.Record(context.Background(), "amazon:B0TEST00000", 1500, nil,
		time.Now().UTC().AddDate(0, 0, -5), models.SourceChat)
	require.NoError(t, err)

	insights, err := e.GetPriceInsights(context.Background(), "amazon:B0TEST00000", 1400, nil)
	require.NoError(t, err)
	assert.True(t, insights.HasHistory)
	assert.True(t, insights.IsHistoricalLow)
}
