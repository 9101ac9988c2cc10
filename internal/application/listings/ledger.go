package listings

import (
	"errors"
	"fmt"

	"scrapmarket-backend/internal/domain"
	"scrapmarket-backend/internal/models"

	"gorm.io/gorm"
)

const LedgerKindSalePayout = "sale_payout"

var ErrSellerNotFound = errors.New("Seller not found")

// Ledger applies a seller credit inside the caller's transaction.
type Ledger interface {
	CreditSeller(tx *gorm.DB, adj domain.LedgerAdjustment) error
}

// GormLedger bumps Users.total_earnings and records a LedgerEntry. The
// entry's unique listing_id rejects a second payout for the same sale.
type GormLedger struct{}

func (GormLedger) CreditSeller(tx *gorm.DB, adj domain.LedgerAdjustment) error {
	if adj.CreditAmount.IsNegative() {
		return domain.InvalidAmount("credit must not be negative")
	}
	res := tx.Model(&models.User{}).
		Where("user_id = ?", adj.SellerID).
		Update("total_earnings", gorm.Expr("total_earnings + ?", adj.CreditAmount.Decimal()))
	if res.Error != nil {
		return fmt.Errorf("credit seller: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSellerNotFound
	}
	entry := models.LedgerEntry{
		SellerID:  adj.SellerID,
		ListingID: adj.ListingID,
		Amount:    adj.CreditAmount.Decimal(),
		Kind:      LedgerKindSalePayout,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("record ledger entry: %w", err)
	}
	return nil
}
