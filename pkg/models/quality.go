package models

// QualityBreakdown holds the six weighted components that sum to the
// overall 0-100 quality score.
type QualityBreakdown struct {
	Authenticity    float64 `json:"authenticity"`
	Discount        float64 `json:"discount"`
	Popularity      float64 `json:"popularity"`
	Urgency         float64 `json:"urgency"`
	Competitiveness float64 `json:"competitiveness"`
	SellerTrust     float64 `json:"seller_trust"`
}

// QualityScore ranks an accepted deal against other current deals.
type QualityScore struct {
	Score          float64          `json:"score"`
	Grade          string           `json:"grade"`
	Recommendation string           `json:"recommendation"`
	Breakdown      QualityBreakdown `json:"breakdown"`
}

// QualityGrade maps a 0-100 score to a letter grade.
func QualityGrade(score float64) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 85:
		return "A"
	case score >= 75:
		return "B"
	case score >= 65:
		return "C"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}

// QualityRecommendation maps a 0-100 score to a human-readable verdict.
func QualityRecommendation(score float64) string {
	switch {
	case score >= 90:
		return "Exceptional deal, grab it now"
	case score >= 85:
		return "Excellent deal, strongly recommended"
	case score >= 75:
		return "Good deal, worth considering"
	case score >= 65:
		return "Decent deal, compare before buying"
	case score >= 40:
		return "Average deal, no rush"
	default:
		return "Weak deal, likely not worth it"
	}
}
