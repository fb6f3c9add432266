// Package deals persists accepted canonical deals in PostgreSQL.
package deals

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/fingerprint"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

var dealColumns = []string{
	"id", "product_key", "title", "store", "link", "category", "source",
	"verified_price", "verified_mrp", "verified_discount", "rating", "review_count",
	"confidence_score", "deal_score", "deal_grade", "deal_type",
	"is_historical_low", "is_fake_discount",
	"stock_status", "seller_name", "seller_rating", "seller_type",
	"offers", "offer_end_date", "fingerprint", "detected_at", "created_at", "updated_at",
}

// dealRow is the scan shape; offers are stored as JSONB.
type dealRow struct {
	models.DealRecord
	OffersJSON  json.RawMessage `db:"offers"`
	Fingerprint string          `db:"fingerprint"`
}

func (row *dealRow) toModel() (models.DealRecord, error) {
	deal := row.DealRecord
	if len(row.OffersJSON) > 0 {
		if err := json.Unmarshal(row.OffersJSON, &deal.Offers); err != nil {
			return models.DealRecord{}, err
		}
	}
	return deal, nil
}

// Repository handles deal persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new deal repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// SaveResult contains the result of a save operation
type SaveResult struct {
	Deal      *models.DealRecord
	IsNew     bool
	IsChanged bool
}

// Save upserts a deal by product key and store. Re-saving a deal whose
// content fingerprint is unchanged leaves the row untouched.
func (r *Repository) Save(ctx context.Context, deal models.DealRecord) (*SaveResult, error) {
	ctx, span := tracing.StartSpan(ctx, "deals.Repository.Save")
	defer span.End()

	fp, err := fingerprint.ForDeal(deal)
	if err != nil {
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to fingerprint deal: %v", err)
	}

	existing, err := r.getByProductKey(ctx, deal.ProductKey, deal.Store)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Fingerprint == fp {
		deal, convErr := existing.toModel()
		if convErr != nil {
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to decode stored deal")
		}
		return &SaveResult{Deal: &deal, IsNew: false, IsChanged: false}, nil
	}

	offersJSON, err := json.Marshal(deal.Offers)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to encode deal offers")
	}

	now := time.Now().UTC()
	deal.UpdatedAt = now
	if existing == nil {
		deal.CreatedAt = now
	} else {
		deal.ID = existing.ID
		deal.CreatedAt = existing.CreatedAt
	}

	query := `
		INSERT INTO deals (
			id, product_key, title, store, link, category, source,
			verified_price, verified_mrp, verified_discount, rating, review_count,
			confidence_score, deal_score, deal_grade, deal_type,
			is_historical_low, is_fake_discount,
			stock_status, seller_name, seller_rating, seller_type,
			offers, offer_end_date, fingerprint, detected_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15, $16,
			$17, $18,
			$19, $20, $21, $22,
			$23, $24, $25, $26, $27, $28
		)
		ON CONFLICT (product_key, store) DO UPDATE SET
			title = EXCLUDED.title,
			link = EXCLUDED.link,
			category = EXCLUDED.category,
			source = EXCLUDED.source,
			verified_price = EXCLUDED.verified_price,
			verified_mrp = EXCLUDED.verified_mrp,
			verified_discount = EXCLUDED.verified_discount,
			rating = EXCLUDED.rating,
			review_count = EXCLUDED.review_count,
			confidence_score = EXCLUDED.confidence_score,
			deal_score = EXCLUDED.deal_score,
			deal_grade = EXCLUDED.deal_grade,
			deal_type = EXCLUDED.deal_type,
			is_historical_low = EXCLUDED.is_historical_low,
			is_fake_discount = EXCLUDED.is_fake_discount,
			stock_status = EXCLUDED.stock_status,
			seller_name = EXCLUDED.seller_name,
			seller_rating = EXCLUDED.seller_rating,
			seller_type = EXCLUDED.seller_type,
			offers = EXCLUDED.offers,
			offer_end_date = EXCLUDED.offer_end_date,
			fingerprint = EXCLUDED.fingerprint,
			detected_at = EXCLUDED.detected_at,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query,
		deal.ID, deal.ProductKey, deal.Title, deal.Store, deal.Link, deal.Category, deal.Source,
		deal.VerifiedPrice, deal.VerifiedMRP, deal.VerifiedDiscount, deal.Rating, deal.ReviewCount,
		deal.ConfidenceScore, deal.DealScore, deal.DealGrade, deal.DealType,
		deal.IsHistoricalLow, deal.IsFakeDiscount,
		deal.StockStatus, deal.SellerName, deal.SellerRating, deal.SellerType,
		offersJSON, deal.OfferEndDate, fp, deal.DetectedAt, deal.CreatedAt, deal.UpdatedAt,
	); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_key": deal.ProductKey,
			"store":       deal.Store,
		}).Error("Failed to save deal")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to save deal")
	}

	return &SaveResult{Deal: &deal, IsNew: existing == nil, IsChanged: true}, nil
}

// GetByID retrieves a deal by id, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.DealRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "deals.Repository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(dealColumns...)
	sb.From("deals")
	sb.Where(sb.Equal("id", id))
	sb.Limit(1)

	query, args := sb.Build()
	var row dealRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id}).Error("Failed to get deal")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get deal")
	}

	deal, err := row.toModel()
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to decode stored deal")
	}
	return &deal, nil
}

// ListFilter narrows List results.
type ListFilter struct {
	Store    string
	Category string
	MinScore float64
	Page     int
	PageSize int
}

// List returns deals ordered by score desc, then discount, then rating.
func (r *Repository) List(ctx context.Context, filter ListFilter) (*models.DealListResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "deals.Repository.List")
	defer span.End()

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 50
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(dealColumns...)
	sb.From("deals")
	where := []string{}
	if filter.Store != "" {
		where = append(where, sb.Equal("store", filter.Store))
	}
	if filter.Category != "" {
		where = append(where, sb.Equal("category", filter.Category))
	}
	if filter.MinScore > 0 {
		where = append(where, sb.GreaterEqualThan("deal_score", filter.MinScore))
	}
	if len(where) > 0 {
		sb.Where(where...)
	}
	sb.OrderBy("deal_score DESC", "verified_discount DESC NULLS LAST", "rating DESC NULLS LAST")
	sb.Limit(filter.PageSize)
	sb.Offset((filter.Page - 1) * filter.PageSize)

	query, args := sb.Build()
	var rows []dealRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list deals")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list deals")
	}

	items := make([]models.DealRecord, 0, len(rows))
	for i := range rows {
		deal, err := rows[i].toModel()
		if err != nil {
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to decode stored deal")
		}
		items = append(items, deal)
	}

	total, err := r.count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &models.DealListResponse{
		Items:      items,
		TotalCount: total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}, nil
}

// DeleteExpired removes deals whose offer window has closed. Returns
// the number of rows removed.
func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "deals.Repository.DeleteExpired")
	defer span.End()

	query := `DELETE FROM deals WHERE offer_end_date IS NOT NULL AND offer_end_date < $1`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete expired deals")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete expired deals")
	}

	removed, _ := result.RowsAffected()
	if removed > 0 {
		r.logger.WithContext(ctx).WithFields(map[string]any{"removed": removed}).Info("Removed expired deals")
	}
	return removed, nil
}

// Statistics summarizes the stored deal set.
type Statistics struct {
	TotalDeals     int     `db:"total_deals" json:"total_deals"`
	AverageScore   float64 `db:"average_score" json:"average_score"`
	HistoricalLows int     `db:"historical_lows" json:"historical_lows"`
	FakeDiscounts  int     `db:"fake_discounts" json:"fake_discounts"`
}

// GetStatistics aggregates counts and average score across all deals.
func (r *Repository) GetStatistics(ctx context.Context) (*Statistics, error) {
	ctx, span := tracing.StartSpan(ctx, "deals.Repository.GetStatistics")
	defer span.End()

	query := `
		SELECT
			COUNT(*) AS total_deals,
			COALESCE(AVG(deal_score), 0) AS average_score,
			COUNT(*) FILTER (WHERE is_historical_low) AS historical_lows,
			COUNT(*) FILTER (WHERE is_fake_discount) AS fake_discounts
		FROM deals
	`

	var stats Statistics
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get deal statistics")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get deal statistics")
	}
	return &stats, nil
}

func (r *Repository) getByProductKey(ctx context.Context, productKey, store string) (*dealRow, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(dealColumns...)
	sb.From("deals")
	sb.Where(
		sb.Equal("product_key", productKey),
		sb.Equal("store", store),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var row dealRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_key": productKey,
			"store":       store,
		}).Error("Failed to get deal by product key")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get deal")
	}
	return &row, nil
}

func (r *Repository) count(ctx context.Context, filter ListFilter) (int, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("deals")
	where := []string{}
	if filter.Store != "" {
		where = append(where, sb.Equal("store", filter.Store))
	}
	if filter.Category != "" {
		where = append(where, sb.Equal("category", filter.Category))
	}
	if filter.MinScore > 0 {
		where = append(where, sb.GreaterEqualThan("deal_score", filter.MinScore))
	}
	if len(where) > 0 {
		sb.Where(where...)
	}

	query, args := sb.Build()
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count deals")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count deals")
	}
	return total, nil
}
