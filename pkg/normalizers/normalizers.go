// Package normalizers provides field normalization functions for deal matching
package normalizers

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Normalizer is a function that normalizes a string value
type Normalizer func(string) string

// registry holds all registered normalizers
var registry = make(map[string]Normalizer)

func init() {
	// Register built-in normalizers
	Register("lowercase", Lowercase)
	Register("trim", Trim)
	Register("remove_whitespace", RemoveWhitespace)
	Register("remove_punctuation", RemovePunctuation)
	Register("ntitle", NormalizeTitle)
	Register("nstore", NormalizeStore)
	Register("digits_only", DigitsOnly)
	Register("alphanumeric", Alphanumeric)
}

// Register adds a normalizer to the registry
func Register(name string, fn Normalizer) {
	registry[name] = fn
}

// Get retrieves a normalizer by name
func Get(name string) (Normalizer, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Apply applies a named normalizer to a value
func Apply(value, normalizer string) string {
	fn, ok := registry[normalizer]
	if !ok {
		return value
	}
	return fn(value)
}

// ApplyChain applies multiple normalizers in sequence
func ApplyChain(value string, normalizers ...string) string {
	result := value
	for _, name := range normalizers {
		result = Apply(result, name)
	}
	return result
}

// Built-in normalizers

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Trim removes leading and trailing whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// RemoveWhitespace removes all whitespace characters
func RemoveWhitespace(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsSpace(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// RemovePunctuation removes all punctuation characters
func RemovePunctuation(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsPunct(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// marketing filler that appears in listing titles but carries no identity
var titleStopwords = map[string]bool{
	"new":      true,
	"latest":   true,
	"original": true,
	"genuine":  true,
	"official": true,
	"sale":     true,
	"offer":    true,
	"deal":     true,
	"hot":      true,
	"best":     true,
	"with":     true,
	"for":      true,
	"the":      true,
	"and":      true,
}

// NormalizeTitle normalizes a product listing title for matching
// - Lowercase
// - Punctuation stripped
// - Marketing stopwords removed
// - Whitespace collapsed
func NormalizeTitle(s string) string {
	s = strings.ToLower(s)

	var cleaned strings.Builder
	prevSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cleaned.WriteRune(r)
			prevSpace = false
		} else if !prevSpace {
			cleaned.WriteRune(' ')
			prevSpace = true
		}
	}

	words := strings.Fields(cleaned.String())
	kept := words[:0]
	for _, w := range words {
		if !titleStopwords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// TitleTokens returns the normalized title as a deduplicated token set
func TitleTokens(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, w := range strings.Fields(NormalizeTitle(s)) {
		tokens[w] = true
	}
	return tokens
}

// NormalizeStore normalizes a store/platform name
func NormalizeStore(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, ".com")
	s = strings.TrimSuffix(s, ".in")
	return s
}

// DigitsOnly keeps only digit characters
func DigitsOnly(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// Alphanumeric keeps only alphanumeric characters
func Alphanumeric(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

var priceRe = regexp.MustCompile(`(?:₹|rs\.?|inr)\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)

// ParsePrice extracts the first currency amount from free text.
// Handles "₹1,499", "Rs. 1499" and "INR 1499.50" style amounts.
// Returns false when no amount is present.
func ParsePrice(s string) (float64, bool) {
	m := priceRe.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0, false
	}
	raw := strings.ReplaceAll(m[1], ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
