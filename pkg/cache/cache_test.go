package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsightKey(t *testing.T) {
	mrp := 1599.0

	tests := []struct {
		name     string
		key      string
		price    float64
		mrp      *float64
		expected string
	}{
		{
			name:     "with claimed mrp",
			key:      "amazon:B09XS7JWHH",
			price:    999,
			mrp:      &mrp,
			expected: "insights:amazon:B09XS7JWHH:999.00:1599.00",
		},
		{
			name:     "without claimed mrp",
			key:      "amazon:B09XS7JWHH",
			price:    999,
			expected: "insights:amazon:B09XS7JWHH:999.00:none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, insightKey(tt.key, tt.price, tt.mrp))
		})
	}
}

// The fake-discount verdict depends on the claimed MRP, so the same
// key and price with different MRP claims must not share an entry.
func TestInsightKey_MRPDistinguishesEntries(t *testing.T) {
	mrp := 1599.0
	otherMRP := 1999.0

	withMRP := insightKey("amazon:B09XS7JWHH", 999, &mrp)
	withOtherMRP := insightKey("amazon:B09XS7JWHH", 999, &otherMRP)
	withoutMRP := insightKey("amazon:B09XS7JWHH", 999, nil)

	assert.NotEqual(t, withMRP, withoutMRP)
	assert.NotEqual(t, withMRP, withOtherMRP)
	assert.NotEqual(t, withOtherMRP, withoutMRP)

	// equal claims share one entry
	same := 1599.0
	assert.Equal(t, withMRP, insightKey("amazon:B09XS7JWHH", 999, &same))
}
