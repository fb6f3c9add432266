package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenSetRatio(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{
			name:     "identical titles",
			a:        "Sony WH-1000XM5 Headphones",
			b:        "Sony WH-1000XM5 Headphones",
			expected: 1.0,
		},
		{
			name:     "marketing filler does not lower the score",
			a:        "Sony WH-1000XM5 Headphones",
			b:        "New Sony WH-1000XM5 Headphones Best Deal",
			expected: 1.0,
		},
		{
			name:     "word order does not matter",
			a:        "Headphones Sony WH-1000XM5",
			b:        "Sony WH-1000XM5 Headphones",
			expected: 1.0,
		},
		{
			name:     "disjoint titles",
			a:        "Sony Headphones",
			b:        "Samsung Refrigerator",
			expected: 0.0,
		},
		{
			name:     "both empty",
			a:        "",
			b:        "",
			expected: 1.0,
		},
		{
			name:     "one empty",
			a:        "Sony Headphones",
			b:        "",
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, s.TokenSetRatio(tt.a, tt.b), 0.001)
		})
	}
}

func TestTokenSetRatio_PartialOverlap(t *testing.T) {
	s := NewScorer()

	// {sony, wh, 1000xm5, headphones} vs {sony, wh, 1000xm4, headphones}
	// intersection 3, union 5
	ratio := s.TokenSetRatio("Sony WH-1000XM5 Headphones", "Sony WH-1000XM4 Headphones")
	assert.InDelta(t, 0.6, ratio, 0.001)
}

func TestTitleSimilarity(t *testing.T) {
	s := NewScorer()

	// token overlap is weak but Jaro-Winkler catches the near-identical
	// strings
	sim := s.TitleSimilarity("Sony WH-1000XM5 Headphones", "Sony WH-1000XM4 Headphones")
	assert.Greater(t, sim, 0.85)

	assert.Equal(t, 1.0, s.TitleSimilarity("boAt Airdopes 141", "Boat Airdopes 141"))
	assert.Less(t, s.TitleSimilarity("Sony Headphones", "Samsung Refrigerator"), 0.6)
}

func TestPriceProximity(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		name      string
		a         float64
		b         float64
		tolerance float64
		expected  float64
	}{
		{"equal prices", 4999, 4999, 0.05, 1.0},
		{"within tolerance", 4999, 5099, 0.05, 1.0},
		{"outside tolerance", 4999, 5999, 0.05, 0.0},
		{"zero price", 0, 4999, 0.05, 0.0},
		{"negative price", -100, 4999, 0.05, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.PriceProximity(tt.a, tt.b, tt.tolerance))
		})
	}
}

func TestJaroWinkler(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, 1.0, s.JaroWinkler("martha", "martha"))
	assert.InDelta(t, 0.961, s.JaroWinkler("martha", "marhta"), 0.001)
	assert.Equal(t, 0.0, s.JaroWinkler("abc", "xyz"))
}

func TestExactMatch(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, 1.0, s.ExactMatch("amazon", "amazon", true))
	assert.Equal(t, 0.0, s.ExactMatch("Amazon", "amazon", true))
	assert.Equal(t, 1.0, s.ExactMatch("Amazon", "amazon", false))
	assert.Equal(t, 0.0, s.ExactMatch("amazon", "flipkart", false))
}

func TestNumericProximity(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, 1.0, s.NumericProximity(100, 100, 10))
	assert.InDelta(t, 0.5, s.NumericProximity(100, 105, 10), 0.001)
	assert.Equal(t, 0.0, s.NumericProximity(100, 110, 10))
	assert.Equal(t, 0.0, s.NumericProximity(100, 200, 10))
}

func TestWeightedScore(t *testing.T) {
	s := NewScorer()

	scores := map[string]float64{"title": 0.9, "price": 0.5}
	weights := map[string]float64{"title": 0.75, "price": 0.25}
	assert.InDelta(t, 0.8, s.WeightedScore(scores, weights), 0.001)

	// missing weights default to 1.0
	assert.InDelta(t, 0.7, s.WeightedScore(scores, nil), 0.001)

	assert.Equal(t, 0.0, s.WeightedScore(nil, weights))
}

func TestLevenshtein(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, 0, s.LevenshteinDistance("kitten", "kitten"))
	assert.Equal(t, 3, s.LevenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 1.0, s.Levenshtein("", ""))
	assert.InDelta(t, 1.0-3.0/7.0, s.Levenshtein("kitten", "sitting"), 0.001)
}
