// Package pricehistory persists price observations in PostgreSQL.
package pricehistory

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	core "github.com/Ramsey-B/clover/pkg/pricehistory"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Repository handles price observation persistence. It satisfies the
// core store interface; idempotent appends ride on the table's unique
// constraint over (product_key, observed_at, price).
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new price history repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Append records an observation. Re-appending an identical
// (product_key, observed_at, price) tuple is a no-op. Retention is
// enforced here rather than by a cleanup job.
func (r *Repository) Append(ctx context.Context, obs models.PriceObservation) error {
	ctx, span := tracing.StartSpan(ctx, "pricehistory.Repository.Append")
	defer span.End()

	query := `
		INSERT INTO price_observations (product_key, store, price, mrp, source, anomalous, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (product_key, observed_at, price) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query,
		obs.ProductKey, obs.Store, obs.Price, obs.MRP, obs.Source, obs.Anomalous, obs.ObservedAt,
	); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_key": obs.ProductKey,
		}).Error("Failed to append price observation")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to append price observation")
	}

	return r.pruneExpired(ctx, obs.ProductKey)
}

// Query returns the key's observations at or after since, oldest first.
func (r *Repository) Query(ctx context.Context, key string, since time.Time) ([]models.PriceObservation, error) {
	ctx, span := tracing.StartSpan(ctx, "pricehistory.Repository.Query")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("product_key", "store", "price", "mrp", "source", "anomalous", "observed_at")
	sb.From("price_observations")
	sb.Where(
		sb.Equal("product_key", key),
		sb.GreaterEqualThan("observed_at", since),
	)
	sb.OrderBy("observed_at ASC")

	query, args := sb.Build()
	var observations []models.PriceObservation
	if err := r.db.SelectContext(ctx, &observations, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_key": key,
		}).Error("Failed to query price observations")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to query price observations")
	}
	return observations, nil
}

// pruneExpired lazily drops observations past the retention window for
// the key being written.
func (r *Repository) pruneExpired(ctx context.Context, key string) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -core.RetentionDays)

	query := `DELETE FROM price_observations WHERE product_key = $1 AND observed_at < $2`
	if _, err := r.db.ExecContext(ctx, query, key, cutoff); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_key": key,
		}).Error("Failed to prune expired price observations")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to prune expired observations")
	}
	return nil
}
