package models

// ConfidenceBreakdown holds the individual weighted components that
// sum to the overall confidence score.
type ConfidenceBreakdown struct {
	PriceMatch        float64 `json:"price_match"`
	Completeness      float64 `json:"completeness"`
	TitleMatch        float64 `json:"title_match"`
	SourceReliability float64 `json:"source_reliability"`
	NoIssues          float64 `json:"no_issues"`
}

// ConfidenceScore is the gate's verdict on whether a candidate's claim
// is trustworthy enough to publish.
type ConfidenceScore struct {
	Score     float64             `json:"score"`
	Label     string              `json:"label"`
	Passed    bool                `json:"passed"`
	Breakdown ConfidenceBreakdown `json:"breakdown"`
	Issues    []string            `json:"issues,omitempty"`
}

// ConfidenceLabel maps a score in [0,1] to a human-readable band.
func ConfidenceLabel(score float64) string {
	switch {
	case score >= 0.9:
		return "Very High"
	case score >= 0.75:
		return "High"
	case score >= 0.6:
		return "Medium"
	case score >= 0.4:
		return "Low"
	default:
		return "Very Low"
	}
}
