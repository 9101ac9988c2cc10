package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a listing.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusNegotiating Status = "negotiating"
	StatusCompleted   Status = "completed"
)

// ParseStatus maps a stored status string to a Status. Unknown values are
// reported as not ok.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusAvailable, StatusNegotiating, StatusCompleted:
		return Status(s), true
	}
	return "", false
}

// Offer is the negotiated terms of a listing. Weight, price and total are
// present together or not at all, so they live behind a single pointer.
type Offer struct {
	Weight       Quantity `json:"negotiated_weight"`
	PricePerUnit Money    `json:"negotiated_price_per_unit"`
	Total        Money    `json:"negotiated_total"`
}

// NewOffer computes the exact total for weight × price.
func NewOffer(weight Quantity, price Money) Offer {
	return Offer{Weight: weight, PricePerUnit: price, Total: weight.Times(price)}
}

// Listing is one seller's unit of offered material.
type Listing struct {
	ID              uuid.UUID  `json:"id"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	TrashType       string     `json:"trash_type"`
	Location        string     `json:"location"`
	Description     string     `json:"description"`
	PhoneNumber     string     `json:"phone_number,omitempty"`
	MapLink         string     `json:"map_link,omitempty"`
	QuantityOffered Quantity   `json:"quantity_offered"`
	PricePerUnit    Money      `json:"price_per_unit"`
	IsNegotiable    bool       `json:"is_negotiable"`
	Status          Status     `json:"status"`
	CollectorID     *uuid.UUID `json:"collector_id"`
	Offer           *Offer     `json:"offer"`
	PlatformProfit  *Money     `json:"platform_profit"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	Version         int        `json:"version"`
}

// IsTerminal reports whether the listing can no longer change.
func (l Listing) IsTerminal() bool { return l.Status == StatusCompleted }

// LedgerAdjustment is the credit owed to a seller after a completed sale.
type LedgerAdjustment struct {
	SellerID     uuid.UUID `json:"seller_id"`
	ListingID    uuid.UUID `json:"listing_id"`
	CreditAmount Money     `json:"credit_amount"`
}
