// Package scoring ranks accepted deals against each other on a 0-100
// scale.
package scoring

import (
	"math"
	"sort"

	"github.com/Ramsey-B/clover/pkg/models"
)

// Component weights. They sum to 100.
const (
	weightAuthenticity    = 25.0
	weightDiscount        = 20.0
	weightPopularity      = 15.0
	weightUrgency         = 15.0
	weightCompetitiveness = 15.0
	weightSellerTrust     = 10.0
)

// discountSaturation is the discount fraction at which the discount
// component maxes out.
const discountSaturation = 0.80

// reviewLogCeiling saturates the log-scaled review count at 10k reviews.
const reviewLogCeiling = 4.0

// dropSaturation is the price drop percentage at which the
// competitiveness base maxes out.
const dropSaturation = 30.0

// Scorer computes quality scores for accepted deals. Pure and
// deterministic given its inputs.
type Scorer struct{}

// NewScorer creates a quality Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score rates a deal given its price insights.
func (s *Scorer) Score(deal models.DealRecord, insights models.PriceInsights) models.QualityScore {
	breakdown := models.QualityBreakdown{
		Authenticity:    s.authenticity(insights),
		Discount:        s.discount(deal),
		Popularity:      s.popularity(deal),
		Urgency:         s.urgency(deal),
		Competitiveness: s.competitiveness(insights),
		SellerTrust:     s.sellerTrust(deal),
	}

	total := breakdown.Authenticity +
		breakdown.Discount +
		breakdown.Popularity +
		breakdown.Urgency +
		breakdown.Competitiveness +
		breakdown.SellerTrust
	total = math.Min(100, math.Max(0, total))

	return models.QualityScore{
		Score:          total,
		Grade:          models.QualityGrade(total),
		Recommendation: models.QualityRecommendation(total),
		Breakdown:      breakdown,
	}
}

// authenticity: a confirmed historical low on an honest MRP earns full
// credit, a fake discount earns none. No history stays neutral rather
// than penalizing an unseen product.
func (s *Scorer) authenticity(insights models.PriceInsights) float64 {
	if insights.IsFakeDiscount {
		return 0
	}
	if insights.IsHistoricalLow && insights.HasHistory {
		return weightAuthenticity
	}
	return weightAuthenticity * 0.6
}

// discount: linear in the discount fraction, saturating at 80% off.
func (s *Scorer) discount(deal models.DealRecord) float64 {
	frac := deal.DiscountPercent() / 100
	return math.Min(frac/discountSaturation, 1) * weightDiscount
}

// popularity: rating and log-scaled review count, each half-weighted.
func (s *Scorer) popularity(deal models.DealRecord) float64 {
	half := weightPopularity / 2

	var ratingScore float64
	if deal.Rating != nil && *deal.Rating > 0 {
		ratingScore = math.Min(*deal.Rating/5, 1) * half
	}

	var reviewScore float64
	if deal.ReviewCount != nil && *deal.ReviewCount > 0 {
		reviewScore = math.Min(math.Log10(float64(*deal.ReviewCount)+1)/reviewLogCeiling, 1) * half
	}

	return ratingScore + reviewScore
}

// urgency: fixed tiers by deal type.
func (s *Scorer) urgency(deal models.DealRecord) float64 {
	switch deal.DealType {
	case models.DealTypeFlash, models.DealTypeLightning:
		return weightUrgency
	case models.DealTypeLimitedTime:
		return weightUrgency * 2 / 3
	default:
		return weightUrgency / 3
	}
}

// competitiveness: scaled from the recent price drops, with a bonus
// for a historical low. No history stays neutral.
func (s *Scorer) competitiveness(insights models.PriceInsights) float64 {
	if !insights.HasHistory {
		return weightCompetitiveness / 2
	}

	var bestDrop float64
	if insights.PriceDrop7d != nil {
		bestDrop = math.Max(bestDrop, *insights.PriceDrop7d)
	}
	if insights.PriceDrop30d != nil {
		bestDrop = math.Max(bestDrop, *insights.PriceDrop30d)
	}

	base := math.Min(bestDrop/dropSaturation, 1) * 10
	if base < 0 {
		base = 0
	}
	if insights.IsHistoricalLow {
		base += 5
	}
	return math.Min(base, weightCompetitiveness)
}

// sellerTrust: platform-direct or fulfilled, then verified third
// party, then unknown.
func (s *Scorer) sellerTrust(deal models.DealRecord) float64 {
	switch deal.SellerType {
	case models.SellerPlatformDirect:
		return weightSellerTrust
	case models.SellerVerified:
		return weightSellerTrust * 0.7
	default:
		return weightSellerTrust * 0.4
	}
}

// SortDeals orders deals for presentation: score desc, then discount
// percentage desc, then rating desc.
func SortDeals(deals []models.DealRecord) {
	sort.SliceStable(deals, func(i, j int) bool {
		if deals[i].DealScore != deals[j].DealScore {
			return deals[i].DealScore > deals[j].DealScore
		}
		di, dj := deals[i].DiscountPercent(), deals[j].DiscountPercent()
		if di != dj {
			return di > dj
		}
		ri, rj := ratingOf(&deals[i]), ratingOf(&deals[j])
		return ri > rj
	})
}

func ratingOf(d *models.DealRecord) float64 {
	if d.Rating == nil {
		return 0
	}
	return *d.Rating
}
