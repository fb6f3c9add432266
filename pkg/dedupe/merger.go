package dedupe

import (
	"sort"
	"time"

	"github.com/Ramsey-B/clover/pkg/models"
)

// FieldMerger builds a merged canonical record field by field across a
// duplicate group.
type FieldMerger struct{}

// NewFieldMerger creates a new FieldMerger
func NewFieldMerger() *FieldMerger {
	return &FieldMerger{}
}

// Merge collapses a group into one record. Scalar pricing fields come
// from the best member; descriptive fields prefer the most complete
// non-empty value. When two members disagree on a non-empty value the
// one from the more reliable source wins, ties broken by the most
// recent detected_at. Offers are collected across the group with
// duplicates removed.
func (m *FieldMerger) Merge(group []models.DealRecord, best models.DealRecord) models.DealRecord {
	merged := best

	// precedence order for conflicting descriptive fields
	ordered := make([]models.DealRecord, len(group))
	copy(ordered, group)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := sourceReliability(ordered[i].Source), sourceReliability(ordered[j].Source)
		if ri != rj {
			return ri > rj
		}
		if !ordered[i].DetectedAt.Equal(ordered[j].DetectedAt) {
			return ordered[i].DetectedAt.After(ordered[j].DetectedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	merged.Title = m.longestString(ordered, func(d models.DealRecord) string { return d.Title })
	merged.Category = m.firstString(ordered, func(d models.DealRecord) string { return d.Category })
	merged.StockStatus = m.firstString(ordered, func(d models.DealRecord) string { return d.StockStatus })
	merged.SellerName = m.firstString(ordered, func(d models.DealRecord) string { return d.SellerName })

	if merged.VerifiedMRP == nil {
		merged.VerifiedMRP = m.firstFloat(ordered, func(d models.DealRecord) *float64 { return d.VerifiedMRP })
	}
	if merged.Rating == nil {
		merged.Rating = m.firstFloat(ordered, func(d models.DealRecord) *float64 { return d.Rating })
	}
	if merged.SellerRating == nil {
		merged.SellerRating = m.firstFloat(ordered, func(d models.DealRecord) *float64 { return d.SellerRating })
	}
	if merged.ReviewCount == nil {
		merged.ReviewCount = m.firstInt(ordered, func(d models.DealRecord) *int { return d.ReviewCount })
	}
	if merged.SellerType == "" || merged.SellerType == models.SellerUnknown {
		for _, d := range ordered {
			if d.SellerType != "" && d.SellerType != models.SellerUnknown {
				merged.SellerType = d.SellerType
				break
			}
		}
	}
	if merged.OfferEndDate == nil {
		merged.OfferEndDate = m.firstTime(ordered, func(d models.DealRecord) *time.Time { return d.OfferEndDate })
	}

	merged.Offers = m.collectOffers(ordered)
	merged.DetectedAt = earliestDetectedAt(group)

	// recompute the discount now that price and MRP may come from
	// different members
	if merged.VerifiedMRP != nil && *merged.VerifiedMRP > merged.VerifiedPrice {
		discount := merged.DiscountPercent()
		merged.VerifiedDiscount = &discount
	}

	return merged
}

// firstString returns the first non-empty value in precedence order.
func (m *FieldMerger) firstString(ordered []models.DealRecord, get func(models.DealRecord) string) string {
	for _, d := range ordered {
		if v := get(d); v != "" {
			return v
		}
	}
	return ""
}

// longestString returns the longest non-empty value; precedence order
// breaks length ties.
func (m *FieldMerger) longestString(ordered []models.DealRecord, get func(models.DealRecord) string) string {
	best := ""
	for _, d := range ordered {
		if v := get(d); len(v) > len(best) {
			best = v
		}
	}
	return best
}

func (m *FieldMerger) firstFloat(ordered []models.DealRecord, get func(models.DealRecord) *float64) *float64 {
	for _, d := range ordered {
		if v := get(d); v != nil {
			out := *v
			return &out
		}
	}
	return nil
}

func (m *FieldMerger) firstInt(ordered []models.DealRecord, get func(models.DealRecord) *int) *int {
	for _, d := range ordered {
		if v := get(d); v != nil {
			out := *v
			return &out
		}
	}
	return nil
}

func (m *FieldMerger) firstTime(ordered []models.DealRecord, get func(models.DealRecord) *time.Time) *time.Time {
	for _, d := range ordered {
		if v := get(d); v != nil {
			out := *v
			return &out
		}
	}
	return nil
}

// collectOffers combines offers across the group, deduplicated, in
// precedence order.
func (m *FieldMerger) collectOffers(ordered []models.DealRecord) []string {
	var out []string
	seen := make(map[string]bool)
	for _, d := range ordered {
		for _, offer := range d.Offers {
			if seen[offer] {
				continue
			}
			seen[offer] = true
			out = append(out, offer)
		}
	}
	return out
}

func sourceReliability(s models.Source) int {
	if s == models.SourceOfficialPage {
		return 2
	}
	return 1
}

func earliestDetectedAt(group []models.DealRecord) time.Time {
	earliest := group[0].DetectedAt
	for _, d := range group[1:] {
		if d.DetectedAt.Before(earliest) {
			earliest = d.DetectedAt
		}
	}
	return earliest
}
