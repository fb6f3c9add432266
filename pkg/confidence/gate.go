// Package confidence implements the admission gate run on every raw
// candidate before anything is persisted.
package confidence

import (
	"math"

	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
)

// Component weights. The maxima sum to 1.0.
const (
	weightPriceMatch        = 0.40
	weightCompleteness      = 0.25
	weightTitleMatch        = 0.15
	weightSourceReliability = 0.10
	weightNoIssues          = 0.10
)

var componentWeights = map[string]float64{
	"price_match":        weightPriceMatch,
	"completeness":       weightCompleteness,
	"title_match":        weightTitleMatch,
	"source_reliability": weightSourceReliability,
	"no_issues":          weightNoIssues,
}

// Price-match decay bounds: full credit at or below 5% relative
// difference, zero credit at or above 50%.
const (
	priceMatchFullCredit = 0.05
	priceMatchZeroCredit = 0.50
)

// issueBudget is how many reported issues exhaust the no_issues credit.
const issueBudget = 3.0

// Gate scores candidates for admission. Pure and deterministic given
// its inputs.
type Gate struct {
	scorer    *matching.Scorer
	threshold float64
}

// NewGate creates a Gate that accepts at or above threshold.
func NewGate(threshold float64) *Gate {
	return &Gate{
		scorer:    matching.NewScorer(),
		threshold: threshold,
	}
}

// Evaluate scores a candidate against its optional verification.
// Missing fields degrade the score instead of failing; a candidate
// with no verification at all still gets a usable (low) score.
func (g *Gate) Evaluate(candidate models.RawCandidate, verification *models.VerificationInfo) models.ConfidenceScore {
	// each component scores 0..1; the weights turn them into the
	// reported breakdown and, summing to 1.0, into the total
	raw := map[string]float64{
		"price_match":        g.priceMatch(candidate, verification),
		"completeness":       g.completeness(candidate, verification),
		"title_match":        g.titleMatch(candidate, verification),
		"source_reliability": g.sourceReliability(candidate, verification),
		"no_issues":          g.noIssues(verification),
	}

	breakdown := models.ConfidenceBreakdown{
		PriceMatch:        raw["price_match"] * weightPriceMatch,
		Completeness:      raw["completeness"] * weightCompleteness,
		TitleMatch:        raw["title_match"] * weightTitleMatch,
		SourceReliability: raw["source_reliability"] * weightSourceReliability,
		NoIssues:          raw["no_issues"] * weightNoIssues,
	}

	score := clamp(g.scorer.WeightedScore(raw, componentWeights), 0, 1)

	return models.ConfidenceScore{
		Score:     score,
		Label:     models.ConfidenceLabel(score),
		Passed:    score >= g.threshold,
		Breakdown: breakdown,
		Issues:    verification.Issues(),
	}
}

// priceMatch gives full credit when claimed and verified prices agree
// within 5%, decaying linearly to zero at 50% difference. No verified
// price means no credit.
func (g *Gate) priceMatch(candidate models.RawCandidate, verification *models.VerificationInfo) float64 {
	if candidate.ClaimedPrice == nil || *candidate.ClaimedPrice <= 0 || !verification.HasPriceData() {
		return 0
	}

	claimed := *candidate.ClaimedPrice
	verified := *verification.VerifiedPrice
	diff := math.Abs(claimed-verified) / math.Max(claimed, verified)

	switch {
	case diff <= priceMatchFullCredit:
		return 1
	case diff >= priceMatchZeroCredit:
		return 0
	default:
		return g.scorer.NumericProximity(diff, priceMatchFullCredit, priceMatchZeroCredit-priceMatchFullCredit)
	}
}

// completeness counts how many of title, price, mrp and link are
// present, claimed or verified.
func (g *Gate) completeness(candidate models.RawCandidate, verification *models.VerificationInfo) float64 {
	present := 0

	if candidate.Title != "" || (verification != nil && verification.VerifiedTitle != "") {
		present++
	}
	if (candidate.ClaimedPrice != nil && *candidate.ClaimedPrice > 0) || verification.HasPriceData() {
		present++
	}
	if (candidate.ClaimedMRP != nil && *candidate.ClaimedMRP > 0) ||
		(verification != nil && verification.VerifiedMRP != nil && *verification.VerifiedMRP > 0) {
		present++
	}
	if candidate.Link != "" {
		present++
	}

	return float64(present) / 4
}

func (g *Gate) titleMatch(candidate models.RawCandidate, verification *models.VerificationInfo) float64 {
	if verification == nil || verification.VerifiedTitle == "" || candidate.Title == "" {
		return 0
	}
	return g.scorer.TokenSetRatio(candidate.Title, verification.VerifiedTitle)
}

// sourceReliability tiers: a scrape earns full credit, a vision
// fallback and an unverified official page 0.6, and a bare text claim
// 0.2. An unverified official page sits at the vision tier because the
// claim comes from the retailer itself but nothing re-checked it.
func (g *Gate) sourceReliability(candidate models.RawCandidate, verification *models.VerificationInfo) float64 {
	if verification != nil {
		switch verification.Method {
		case models.VerificationScrape:
			return 1.0
		case models.VerificationVision:
			return 0.6
		}
	}
	if candidate.Source == models.SourceOfficialPage {
		return 0.6
	}
	return 0.2
}

// noIssues deducts proportionally per reported issue, exhausting the
// credit at three issues.
func (g *Gate) noIssues(verification *models.VerificationInfo) float64 {
	n := float64(len(verification.Issues()))
	return clamp(1-n/issueBudget, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
