package models

import (
	"fmt"
	"time"

	"scrapmarket-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Listing is the stored form of a domain.Listing (one scrap post).
// The negotiated columns are nullable and written together.
type Listing struct {
	ListingID              uuid.UUID           `gorm:"column:listing_id;type:uuid;primaryKey" json:"listing_id"`
	OwnerID                uuid.UUID           `gorm:"column:owner_id;type:uuid;not null;index" json:"owner_id"`
	TrashType              string              `gorm:"column:trash_type;type:varchar(50);not null" json:"trash_type"`
	Location               string              `gorm:"column:location;type:varchar(255);not null" json:"location"`
	Description            string              `gorm:"column:description;type:text" json:"description"`
	PhoneNumber            string              `gorm:"column:phone_number;type:varchar(15)" json:"phone_number"`
	MapLink                string              `gorm:"column:map_link;type:varchar(500)" json:"map_link"`
	QuantityOffered        decimal.Decimal     `gorm:"column:quantity_offered;type:numeric(12,3);not null" json:"quantity_offered"`
	PricePerUnit           decimal.Decimal     `gorm:"column:price_per_unit;type:numeric(12,2);not null" json:"price_per_unit"`
	IsNegotiable           bool                `gorm:"column:is_negotiable;not null;default:false" json:"is_negotiable"`
	Status                 string              `gorm:"column:status;type:varchar(20);not null;default:'available';index" json:"status"`
	CollectorID            *uuid.UUID          `gorm:"column:collector_id;type:uuid;index" json:"collector_id"`
	NegotiatedWeight       decimal.NullDecimal `gorm:"column:negotiated_weight;type:numeric(12,3)" json:"negotiated_weight"`
	NegotiatedPricePerUnit decimal.NullDecimal `gorm:"column:negotiated_price_per_unit;type:numeric(12,2)" json:"negotiated_price_per_unit"`
	NegotiatedTotal        decimal.NullDecimal `gorm:"column:negotiated_total;type:numeric(18,5)" json:"negotiated_total"`
	PlatformProfit         decimal.NullDecimal `gorm:"column:platform_profit;type:numeric(18,2)" json:"platform_profit"`
	CompletedAt            *time.Time          `gorm:"column:completed_at" json:"completed_at"`
	Version                int                 `gorm:"column:version;not null;default:0" json:"version"`
	CreatedAt              time.Time           `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt              time.Time           `gorm:"column:updatedAt" json:"updatedAt"`
	DeletedAt              gorm.DeletedAt      `gorm:"index" json:"-"`
}

func (Listing) TableName() string {
	return "Listings"
}

// BeforeCreate sets listing_id if not already set (DBs without default uuid).
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ListingID == uuid.Nil {
		l.ListingID = uuid.New()
	}
	return nil
}

// ToDomain rebuilds the aggregate. A row with only some negotiated columns
// set is rejected rather than half-loaded.
func (l *Listing) ToDomain() (domain.Listing, error) {
	status, ok := domain.ParseStatus(l.Status)
	if !ok {
		return domain.Listing{}, fmt.Errorf("listing %s: unknown status %q", l.ListingID, l.Status)
	}
	qty, err := domain.NewQuantity(l.QuantityOffered)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("listing %s: %w", l.ListingID, err)
	}
	out := domain.Listing{
		ID:              l.ListingID,
		OwnerID:         l.OwnerID,
		TrashType:       l.TrashType,
		Location:        l.Location,
		Description:     l.Description,
		PhoneNumber:     l.PhoneNumber,
		MapLink:         l.MapLink,
		QuantityOffered: qty,
		PricePerUnit:    domain.NewMoney(l.PricePerUnit),
		IsNegotiable:    l.IsNegotiable,
		Status:          status,
		CollectorID:     l.CollectorID,
		CompletedAt:     l.CompletedAt,
		CreatedAt:       l.CreatedAt,
		Version:         l.Version,
	}

	set := 0
	for _, v := range []decimal.NullDecimal{l.NegotiatedWeight, l.NegotiatedPricePerUnit, l.NegotiatedTotal} {
		if v.Valid {
			set++
		}
	}
	switch set {
	case 0:
	case 3:
		weight, err := domain.NewQuantity(l.NegotiatedWeight.Decimal)
		if err != nil {
			return domain.Listing{}, fmt.Errorf("listing %s: %w", l.ListingID, err)
		}
		out.Offer = &domain.Offer{
			Weight:       weight,
			PricePerUnit: domain.NewMoney(l.NegotiatedPricePerUnit.Decimal),
			Total:        domain.NewMoney(l.NegotiatedTotal.Decimal),
		}
	default:
		return domain.Listing{}, fmt.Errorf("listing %s: negotiated columns partially set", l.ListingID)
	}
	if l.PlatformProfit.Valid {
		profit := domain.NewMoney(l.PlatformProfit.Decimal)
		out.PlatformProfit = &profit
	}
	return out, nil
}

// ListingFromDomain converts the aggregate back to a row. Version is copied
// as-is; the repository bumps it on save.
func ListingFromDomain(l domain.Listing) Listing {
	row := Listing{
		ListingID:       l.ID,
		OwnerID:         l.OwnerID,
		TrashType:       l.TrashType,
		Location:        l.Location,
		Description:     l.Description,
		PhoneNumber:     l.PhoneNumber,
		MapLink:         l.MapLink,
		QuantityOffered: l.QuantityOffered.Decimal(),
		PricePerUnit:    l.PricePerUnit.Decimal(),
		IsNegotiable:    l.IsNegotiable,
		Status:          string(l.Status),
		CollectorID:     l.CollectorID,
		CompletedAt:     l.CompletedAt,
		CreatedAt:       l.CreatedAt,
		Version:         l.Version,
	}
	if l.Offer != nil {
		row.NegotiatedWeight = decimal.NewNullDecimal(l.Offer.Weight.Decimal())
		row.NegotiatedPricePerUnit = decimal.NewNullDecimal(l.Offer.PricePerUnit.Decimal())
		row.NegotiatedTotal = decimal.NewNullDecimal(l.Offer.Total.Decimal())
	}
	if l.PlatformProfit != nil {
		row.PlatformProfit = decimal.NewNullDecimal(l.PlatformProfit.Decimal())
	}
	return row
}
