package models

import (
	"encoding/json"
	"time"
)

// Source identifies where a deal claim originated.
type Source string

const (
	SourceChat         Source = "chat"
	SourceOfficialPage Source = "official_page"
)

// VerificationMethod describes how the product page was inspected.
type VerificationMethod string

const (
	VerificationScrape VerificationMethod = "scrape"
	VerificationVision VerificationMethod = "vision"
	VerificationNone   VerificationMethod = "none"
)

// DealType drives the urgency component of the quality score.
type DealType string

const (
	DealTypeFlash       DealType = "flash"
	DealTypeLightning   DealType = "lightning"
	DealTypeLimitedTime DealType = "limited_time"
	DealTypeRegular     DealType = "regular"
)

// SellerType buckets sellers for the trust component of the quality
// score.
type SellerType string

const (
	SellerPlatformDirect SellerType = "platform_direct"
	SellerVerified       SellerType = "verified"
	SellerUnknown        SellerType = "unknown"
)

// SellerInfo is what the feed or page reported about the seller.
type SellerInfo struct {
	Name           string   `json:"name,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
	PlatformDirect bool     `json:"platform_direct,omitempty"`
	Fulfilled      bool     `json:"fulfilled,omitempty"`
	VerifiedSeller bool     `json:"verified_seller,omitempty"`
}

// Type buckets the seller into a trust tier.
func (s *SellerInfo) Type() SellerType {
	switch {
	case s == nil:
		return SellerUnknown
	case s.PlatformDirect || s.Fulfilled:
		return SellerPlatformDirect
	case s.VerifiedSeller:
		return SellerVerified
	default:
		return SellerUnknown
	}
}

// RawCandidate is an unverified deal claim exactly as it arrived from a feed.
// Claimed fields were parsed out of free text and may be missing or wrong.
type RawCandidate struct {
	ID              string          `json:"id" db:"id"`
	Source          Source          `json:"source" db:"source"`
	SourceChannel   string          `json:"source_channel,omitempty" db:"source_channel"`
	Store           string          `json:"store" db:"store"`
	Title           string          `json:"title" db:"title"`
	Link            string          `json:"link" db:"link"`
	ClaimedPrice    *float64        `json:"claimed_price,omitempty" db:"claimed_price"`
	ClaimedMRP      *float64        `json:"claimed_mrp,omitempty" db:"claimed_mrp"`
	ClaimedDiscount *float64        `json:"claimed_discount,omitempty" db:"claimed_discount"`
	Rating          *float64        `json:"rating,omitempty" db:"rating"`
	ReviewCount     *int            `json:"review_count,omitempty" db:"review_count"`
	StockStatus     string          `json:"stock_status,omitempty" db:"stock_status"`
	Seller          *SellerInfo     `json:"seller_info,omitempty" db:"-"`
	Offers          []string        `json:"offers,omitempty" db:"-"`
	DealType        DealType        `json:"deal_type,omitempty" db:"deal_type"`
	RawText         string          `json:"raw_text,omitempty" db:"raw_text"`
	Metadata        json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	DetectedAt      time.Time       `json:"detected_at" db:"detected_at"`
}

// LLMVerdict is the fixed-shape output of the external verifier.
// It is consumed as-is, never recomputed.
type LLMVerdict struct {
	Verified   bool     `json:"verified"`
	PriceMatch bool     `json:"price_match"`
	Issues     []string `json:"issues,omitempty"`
}

// VerificationInfo carries what the page inspection actually found.
// Absent entirely when no collaborator was available for the candidate.
type VerificationInfo struct {
	Method        VerificationMethod `json:"method"`
	VerifiedTitle string             `json:"verified_title,omitempty"`
	VerifiedPrice *float64           `json:"verified_price,omitempty"`
	VerifiedMRP   *float64           `json:"verified_mrp,omitempty"`
	Availability  string             `json:"availability,omitempty"`
	Verdict       *LLMVerdict        `json:"llm_verdict,omitempty"`
	VerifiedAt    time.Time          `json:"verified_at"`
}

// HasPriceData reports whether the inspection produced a usable price.
func (v *VerificationInfo) HasPriceData() bool {
	return v != nil && v.VerifiedPrice != nil && *v.VerifiedPrice > 0
}

// Issues returns the verdict's issue list, nil-safe.
func (v *VerificationInfo) Issues() []string {
	if v == nil || v.Verdict == nil {
		return nil
	}
	return v.Verdict.Issues
}

// EvaluateRequest is the request for evaluating a single candidate.
type EvaluateRequest struct {
	Candidate    RawCandidate      `json:"candidate" validate:"required"`
	Verification *VerificationInfo `json:"verification,omitempty"`
}

// ResolveRequest is the request for resolving a batch of accepted deals
// into canonical records.
type ResolveRequest struct {
	Deals    []DealRecord `json:"deals" validate:"required,min=1"`
	Strategy string       `json:"strategy,omitempty" validate:"omitempty,oneof=best first merge"`
}
