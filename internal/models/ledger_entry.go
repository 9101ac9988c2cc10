package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerEntry records one credit to a seller. ListingID is unique so a sale
// can only ever be paid out once.
type LedgerEntry struct {
	EntryID   uuid.UUID       `gorm:"column:entry_id;type:uuid;primaryKey" json:"entry_id"`
	SellerID  uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`
	ListingID uuid.UUID       `gorm:"column:listing_id;type:uuid;not null;uniqueIndex" json:"listing_id"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(18,5);not null" json:"amount"`
	Kind      string          `gorm:"column:kind;type:varchar(20);not null" json:"kind"`
	CreatedAt time.Time       `gorm:"column:createdAt" json:"createdAt"`
}

func (LedgerEntry) TableName() string {
	return "LedgerEntries"
}

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.EntryID == uuid.Nil {
		e.EntryID = uuid.New()
	}
	return nil
}
