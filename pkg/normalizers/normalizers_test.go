package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases and collapses whitespace",
			input:    "Sony  WH-1000XM5   Headphones",
			expected: "sony wh 1000xm5 headphones",
		},
		{
			name:     "strips marketing stopwords",
			input:    "New Original Sony WH-1000XM5 Best Deal",
			expected: "sony wh 1000xm5",
		},
		{
			name:     "strips punctuation",
			input:    "boAt Airdopes 141, Bluetooth (TWS)!",
			expected: "boat airdopes 141 bluetooth tws",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "only stopwords",
			input:    "Best New Deal Offer",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTitle(tt.input))
		})
	}
}

func TestTitleTokens(t *testing.T) {
	tokens := TitleTokens("Sony Sony WH-1000XM5 Headphones")
	assert.Len(t, tokens, 4)
	assert.True(t, tokens["sony"])
	assert.True(t, tokens["wh"])
	assert.True(t, tokens["1000xm5"])
	assert.True(t, tokens["headphones"])
}

func TestNormalizeStore(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Amazon.in", "amazon"},
		{"Flipkart.com", "flipkart"},
		{"  Myntra  ", "myntra"},
		{"amazon", "amazon"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeStore(tt.input))
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{"rupee symbol with commas", "Grab it at ₹1,499 only", 1499, true},
		{"rs prefix with dot", "Rs. 1499", 1499, true},
		{"rs prefix no dot", "rs 999", 999, true},
		{"inr prefix with decimals", "INR 1499.50", 1499.50, true},
		{"no amount", "amazing discount today", 0, false},
		{"bare number is not a price", "save 500 today", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, got, 0.001)
			}
		})
	}
}

func TestApplyChain(t *testing.T) {
	result := ApplyChain("  Sony WH-1000XM5  ", "trim", "lowercase", "remove_whitespace")
	assert.Equal(t, "sonywh-1000xm5", result)
}

func TestApplyUnknownNormalizerIsIdentity(t *testing.T) {
	assert.Equal(t, "Value", Apply("Value", "does_not_exist"))
}
