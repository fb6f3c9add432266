package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	c := NewCategorizer()

	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{"electronics", "Sony WH-1000XM5 Wireless Headphone", "electronics"},
		{"plural keyword form", "Sony WH-1000XM5 Wireless Headphones", "electronics"},
		{"appliances", "LG 7kg Washing Machine Front Load", "appliances"},
		{"fashion", "Roadster Men Navy Blue Slim Fit Jeans", "fashion"},
		{"home", "Wakefit Orthopaedic Memory Foam Mattress", "home"},
		{"beauty", "Nivea Body Lotion 400ml", "beauty"},
		{"grocery", "Tata Sampann Toor Dal 1kg", "grocery"},
		{"sports", "Yonex Badminton Racket", "sports"},
		{"books", "The Psychology of Money Paperback", "books"},
		{"unknown falls back", "Mystery Item 42", "general"},
		{"empty title", "", "general"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Categorize(tt.title))
		})
	}
}

func TestCategorize_MoreHitsWin(t *testing.T) {
	c := NewCategorizer()

	// "watch" alone is fashion; smartwatch plus charger is clearly
	// electronics
	assert.Equal(t, "electronics", c.Categorize("Noise Smartwatch with Charger"))
	assert.Equal(t, "fashion", c.Categorize("Titan Analog Watch"))
}
