package models

import (
	"time"
)

// DealRecord is the persisted shape of an accepted deal. Every field the
// downstream reporting layer expects is populated at acceptance time.
type DealRecord struct {
	ID               string     `json:"id" db:"id"`
	ProductKey       string     `json:"product_key" db:"product_key"`
	Title            string     `json:"title" db:"title"`
	Store            string     `json:"store" db:"store"`
	Link             string     `json:"link" db:"link"`
	Category         string     `json:"category" db:"category"`
	Source           Source     `json:"source" db:"source"`
	VerifiedPrice    float64    `json:"verified_price" db:"verified_price"`
	VerifiedMRP      *float64   `json:"verified_mrp,omitempty" db:"verified_mrp"`
	VerifiedDiscount *float64   `json:"verified_discount,omitempty" db:"verified_discount"`
	Rating           *float64   `json:"rating,omitempty" db:"rating"`
	ReviewCount      *int       `json:"review_count,omitempty" db:"review_count"`
	ConfidenceScore  float64    `json:"confidence_score" db:"confidence_score"`
	DealScore        float64    `json:"deal_score" db:"deal_score"`
	DealGrade        string     `json:"deal_grade" db:"deal_grade"`
	DealType         DealType   `json:"deal_type" db:"deal_type"`
	IsHistoricalLow  bool       `json:"is_historical_low" db:"is_historical_low"`
	IsFakeDiscount   bool       `json:"is_fake_discount" db:"is_fake_discount"`
	StockStatus      string     `json:"stock_status,omitempty" db:"stock_status"`
	SellerName       string     `json:"seller_name,omitempty" db:"seller_name"`
	SellerRating     *float64   `json:"seller_rating,omitempty" db:"seller_rating"`
	SellerType       SellerType `json:"seller_type,omitempty" db:"seller_type"`
	Offers           []string   `json:"offers,omitempty" db:"-"`
	OfferEndDate     *time.Time `json:"offer_end_date,omitempty" db:"offer_end_date"`
	DetectedAt       time.Time  `json:"detected_at" db:"detected_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// EffectivePrice is the price used for ranking and duplicate collapse.
func (d *DealRecord) EffectivePrice() float64 {
	return d.VerifiedPrice
}

// DiscountPercent computes the discount from verified price and MRP.
// Returns 0 when the MRP is missing or not above the price.
func (d *DealRecord) DiscountPercent() float64 {
	if d.VerifiedMRP == nil || *d.VerifiedMRP <= 0 || *d.VerifiedMRP <= d.VerifiedPrice {
		return 0
	}
	return (*d.VerifiedMRP - d.VerifiedPrice) / *d.VerifiedMRP * 100
}

// CanonicalDeal is the single representative record for a duplicate
// group, with the absorbed members kept as an audit trail.
type CanonicalDeal struct {
	DealRecord
	AbsorbedSources []AbsorbedSource `json:"absorbed_sources,omitempty"`
	SourceCount     int              `json:"source_count"`
}

// AbsorbedSource records where a collapsed duplicate came from.
type AbsorbedSource struct {
	DealID     string    `json:"deal_id"`
	Source     Source    `json:"source"`
	Store      string    `json:"store"`
	Link       string    `json:"link"`
	Price      float64   `json:"price"`
	DetectedAt time.Time `json:"detected_at"`
}

// EvaluateResult is the outcome of running a candidate through the
// confidence gate and, on acceptance, the full scoring pipeline.
type EvaluateResult struct {
	Accepted   bool            `json:"accepted"`
	Confidence ConfidenceScore `json:"confidence"`
	Deal       *DealRecord     `json:"deal,omitempty"`
	Quality    *QualityScore   `json:"quality,omitempty"`
	Insights   *PriceInsights  `json:"insights,omitempty"`
}

// ResolveResponse is the response for a batch resolution.
type ResolveResponse struct {
	Deals      []CanonicalDeal `json:"deals"`
	InputCount int             `json:"input_count"`
	Collapsed  int             `json:"collapsed"`
}

// DealListResponse is the response for listing stored deals.
type DealListResponse struct {
	Items      []DealRecord `json:"items"`
	TotalCount int          `json:"total_count"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
}
