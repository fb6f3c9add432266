// Package pricehistory holds the per-product price time series and the
// authenticity analysis derived from it.
package pricehistory

import (
	"context"
	"time"

	"github.com/Ramsey-B/clover/pkg/models"
)

// RetentionDays is the rolling window kept per product. Observations
// older than this are pruned lazily on read and append.
const RetentionDays = 90

// Repository is the append-only price series store. Implementations
// must tolerate concurrent appends to the same key and treat an exact
// duplicate (key, observed_at, price) tuple as a no-op.
type Repository interface {
	Append(ctx context.Context, obs models.PriceObservation) error
	Query(ctx context.Context, key string, since time.Time) ([]models.PriceObservation, error)
}
