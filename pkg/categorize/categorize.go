// Package categorize assigns a product category from listing titles.
package categorize

import (
	"strings"

	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// DefaultCategory is used when no keyword set matches.
const DefaultCategory = "general"

// keyword sets checked in order; the first category with a hit wins,
// more hits win over fewer
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"electronics", []string{"phone", "smartphone", "mobile", "laptop", "tablet", "earbuds", "headphone", "earphone", "speaker", "smartwatch", "camera", "tv", "television", "monitor", "router", "powerbank", "charger", "ssd", "pendrive"}},
	{"appliances", []string{"refrigerator", "fridge", "washing", "microwave", "mixer", "grinder", "kettle", "iron", "vacuum", "purifier", "geyser", "fan", "cooler", "ac", "dishwasher"}},
	{"fashion", []string{"shirt", "tshirt", "jeans", "trouser", "dress", "kurta", "saree", "shoes", "sneakers", "sandals", "watch", "sunglasses", "wallet", "belt", "jacket", "hoodie"}},
	{"home", []string{"bedsheet", "pillow", "curtain", "sofa", "mattress", "cookware", "dinnerware", "storage", "lamp", "decor", "towel", "blanket"}},
	{"beauty", []string{"cream", "lotion", "shampoo", "conditioner", "serum", "perfume", "deodorant", "lipstick", "makeup", "trimmer", "razor"}},
	{"grocery", []string{"rice", "atta", "flour", "oil", "ghee", "tea", "coffee", "snacks", "chocolate", "biscuit", "masala", "dal"}},
	{"sports", []string{"dumbbell", "treadmill", "yoga", "cycle", "bicycle", "cricket", "football", "badminton", "gym", "fitness"}},
	{"toys", []string{"toy", "lego", "puzzle", "boardgame", "doll", "remote control", "rc car"}},
	{"books", []string{"book", "novel", "paperback", "hardcover", "notebook", "diary"}},
}

// Categorizer assigns categories by keyword match on normalized titles.
type Categorizer struct{}

// NewCategorizer creates a Categorizer.
func NewCategorizer() *Categorizer {
	return &Categorizer{}
}

// Categorize returns the category whose keyword set best matches the
// title. Falls back to DefaultCategory.
func (c *Categorizer) Categorize(title string) string {
	normalized := " " + normalizers.NormalizeTitle(title) + " "

	bestCategory := DefaultCategory
	bestHits := 0
	for _, set := range categoryKeywords {
		hits := 0
		for _, kw := range set.keywords {
			// simple plural tolerance: "headphones" still hits "headphone"
			if strings.Contains(normalized, " "+kw+" ") || strings.Contains(normalized, " "+kw+"s ") {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			bestCategory = set.category
		}
	}
	return bestCategory
}
