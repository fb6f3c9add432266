package pricehistory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Ramsey-B/clover/pkg/models"
)

// MemoryRepository is an in-process Repository. Series are kept sorted
// by observed_at regardless of insertion order.
type MemoryRepository struct {
	mu     sync.RWMutex
	series map[string][]models.PriceObservation
	now    func() time.Time
}

// NewMemoryRepository creates an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		series: make(map[string][]models.PriceObservation),
		now:    time.Now,
	}
}

// Append adds an observation to its key's series. Re-appending an
// identical (key, observed_at, price) tuple has no effect.
func (r *MemoryRepository) Append(_ context.Context, obs models.PriceObservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	series := r.prune(obs.ProductKey)

	for _, existing := range series {
		if existing.ObservedAt.Equal(obs.ObservedAt) && existing.Price == obs.Price {
			return nil
		}
	}

	series = append(series, obs)
	sort.Slice(series, func(i, j int) bool {
		return series[i].ObservedAt.Before(series[j].ObservedAt)
	})
	r.series[obs.ProductKey] = series

	return nil
}

// Query returns the key's observations at or after since, oldest first.
func (r *MemoryRepository) Query(_ context.Context, key string, since time.Time) ([]models.PriceObservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	series := r.prune(key)

	out := make([]models.PriceObservation, 0, len(series))
	for _, obs := range series {
		if !obs.ObservedAt.Before(since) {
			out = append(out, obs)
		}
	}
	return out, nil
}

// prune drops observations past retention. Caller holds the lock.
func (r *MemoryRepository) prune(key string) []models.PriceObservation {
	series := r.series[key]
	cutoff := r.now().AddDate(0, 0, -RetentionDays)

	i := 0
	for i < len(series) && series[i].ObservedAt.Before(cutoff) {
		i++
	}
	if i > 0 {
		series = series[i:]
		if len(series) == 0 {
			delete(r.series, key)
			return nil
		}
		r.series[key] = series
	}
	return series
}
