// Package dedupe collapses same-product deals from different sources
// into canonical records.
package dedupe

import (
	"context"
	"sort"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
	"github.com/Ramsey-B/clover/pkg/productkey"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Strategy selects how a duplicate group collapses to one record.
type Strategy string

const (
	// StrategyBest keeps the member with the lowest effective price,
	// ties broken by the highest quality score.
	StrategyBest Strategy = "best"
	// StrategyFirst keeps the member with the earliest detected_at.
	StrategyFirst Strategy = "first"
	// StrategyMerge builds a field-by-field composite of the group.
	StrategyMerge Strategy = "merge"
)

// ParseStrategy maps a config string to a Strategy, defaulting to best.
func ParseStrategy(s string) Strategy {
	switch Strategy(s) {
	case StrategyFirst:
		return StrategyFirst
	case StrategyMerge:
		return StrategyMerge
	default:
		return StrategyBest
	}
}

// Resolver groups duplicate deals and collapses each group. Grouping is
// a transitive closure over exact-key and fuzzy links, so the result is
// independent of input ordering.
type Resolver struct {
	scorer         *matching.Scorer
	merger         *FieldMerger
	logger         ectologger.Logger
	titleThreshold float64
	priceTolerance float64
}

// NewResolver creates a Resolver. titleThreshold is the minimum title
// similarity and priceTolerance the maximum relative price gap for a
// fuzzy link.
func NewResolver(logger ectologger.Logger, titleThreshold, priceTolerance float64) *Resolver {
	return &Resolver{
		scorer:         matching.NewScorer(),
		merger:         NewFieldMerger(),
		logger:         logger,
		titleThreshold: titleThreshold,
		priceTolerance: priceTolerance,
	}
}

// Resolve collapses a batch of deals into canonical records.
func (r *Resolver) Resolve(ctx context.Context, deals []models.DealRecord, strategy Strategy) []models.CanonicalDeal {
	ctx, span := tracing.StartSpan(ctx, "dedupe.Resolver.Resolve")
	defer span.End()

	if len(deals) == 0 {
		return nil
	}

	keys := make([]productkey.Key, len(deals))
	for i, d := range deals {
		if d.ProductKey != "" {
			keys[i] = productkey.Key{
				Platform: normalizers.NormalizeStore(d.Store),
				ID:       d.ProductKey,
				Clean:    true,
			}
			continue
		}
		keys[i] = productkey.ForDeal(d.Store, d.Link, d.Title)
	}

	uf := newUnionFind(len(deals))

	// exact links: identical clean keys are definitely the same product
	byKey := make(map[string]int)
	for i, key := range keys {
		if !key.Clean {
			continue
		}
		if j, ok := byKey[key.String()]; ok {
			uf.union(i, j)
		} else {
			byKey[key.String()] = i
		}
	}

	// fuzzy links: only when the pair is not already decided by two
	// clean keys
	for i := 0; i < len(deals); i++ {
		for j := i + 1; j < len(deals); j++ {
			if keys[i].Clean && keys[j].Clean {
				continue
			}
			if r.fuzzyMatch(deals[i], deals[j]) {
				uf.union(i, j)
			}
		}
	}

	groups := uf.groups()

	out := make([]models.CanonicalDeal, 0, len(groups))
	for _, indices := range groups {
		group := make([]models.DealRecord, len(indices))
		for gi, idx := range indices {
			group[gi] = deals[idx]
		}
		out = append(out, r.collapse(group, strategy))
	}

	// deterministic output order regardless of input order
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductKey != out[j].ProductKey {
			return out[i].ProductKey < out[j].ProductKey
		}
		return out[i].ID < out[j].ID
	})

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"input":  len(deals),
		"output": len(out),
	}).Info("resolved duplicate groups")

	return out
}

// fuzzyMatch links two deals when their titles agree strongly and
// their prices are within tolerance.
func (r *Resolver) fuzzyMatch(a, b models.DealRecord) bool {
	if r.scorer.PriceProximity(a.EffectivePrice(), b.EffectivePrice(), r.priceTolerance) == 0 {
		return false
	}
	return r.scorer.TitleSimilarity(a.Title, b.Title) >= r.titleThreshold
}

// collapse reduces one group to a canonical record per the strategy.
func (r *Resolver) collapse(group []models.DealRecord, strategy Strategy) models.CanonicalDeal {
	best := pickBest(group)

	var canonical models.DealRecord
	switch strategy {
	case StrategyFirst:
		canonical = pickFirst(group)
	case StrategyMerge:
		canonical = r.merger.Merge(group, best)
	default:
		canonical = best
	}

	var absorbed []models.AbsorbedSource
	for _, d := range group {
		if d.ID == canonical.ID && strategy != StrategyMerge {
			continue
		}
		if strategy == StrategyMerge && d.ID == best.ID {
			continue
		}
		absorbed = append(absorbed, models.AbsorbedSource{
			DealID:     d.ID,
			Source:     d.Source,
			Store:      d.Store,
			Link:       d.Link,
			Price:      d.EffectivePrice(),
			DetectedAt: d.DetectedAt,
		})
	}

	return models.CanonicalDeal{
		DealRecord:      canonical,
		AbsorbedSources: absorbed,
		SourceCount:     len(group),
	}
}

// pickBest selects by lowest effective price, then highest quality
// score, then lowest id for determinism.
func pickBest(group []models.DealRecord) models.DealRecord {
	best := group[0]
	for _, d := range group[1:] {
		switch {
		case d.EffectivePrice() < best.EffectivePrice():
			best = d
		case d.EffectivePrice() == best.EffectivePrice() && d.DealScore > best.DealScore:
			best = d
		case d.EffectivePrice() == best.EffectivePrice() && d.DealScore == best.DealScore && d.ID < best.ID:
			best = d
		}
	}
	return best
}

// pickFirst selects by earliest detected_at, then lowest id.
func pickFirst(group []models.DealRecord) models.DealRecord {
	first := group[0]
	for _, d := range group[1:] {
		if d.DetectedAt.Before(first.DetectedAt) ||
			(d.DetectedAt.Equal(first.DetectedAt) && d.ID < first.ID) {
			first = d
		}
	}
	return first
}
