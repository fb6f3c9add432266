package models

import "time"

// Trend describes the recent direction of a product's price series.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
	TrendUnknown Trend = "unknown"
)

// PriceObservation is a single point in a product's price history.
// Observations flagged anomalous stay in the series but are excluded
// from MRP ceiling calculations.
type PriceObservation struct {
	ProductKey string    `json:"product_key" db:"product_key"`
	Store      string    `json:"store" db:"store"`
	Price      float64   `json:"price" db:"price"`
	MRP        *float64  `json:"mrp,omitempty" db:"mrp"`
	Source     Source    `json:"source" db:"source"`
	Anomalous  bool      `json:"anomalous" db:"anomalous"`
	ObservedAt time.Time `json:"observed_at" db:"observed_at"`
}

// PriceInsights summarizes a product's history at a point in time.
// Derived on demand, never stored.
type PriceInsights struct {
	ProductKey       string   `json:"product_key"`
	HasHistory       bool     `json:"has_history"`
	Observations     int      `json:"observations"`
	CurrentPrice     float64  `json:"current_price"`
	LowestPrice      *float64 `json:"lowest_price,omitempty"`
	HighestPrice     *float64 `json:"highest_price,omitempty"`
	AveragePrice     *float64 `json:"average_price,omitempty"`
	HistoricalMaxMRP *float64 `json:"historical_max_mrp,omitempty"`
	IsHistoricalLow  bool     `json:"is_historical_low"`
	IsFakeDiscount   bool     `json:"is_fake_discount"`
	PriceDrop7d      *float64 `json:"price_drop_7d,omitempty"`
	PriceDrop30d     *float64 `json:"price_drop_30d,omitempty"`
	Trend            Trend    `json:"trend_30d"`
}
