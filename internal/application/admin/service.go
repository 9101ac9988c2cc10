package admin

import (
	"context"
	"fmt"

	"scrapmarket-backend/internal/domain"
	"scrapmarket-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service computes platform-wide figures for the admin dashboard.
type Service struct {
	DB *gorm.DB
}

// Dashboard is the body of GET /admin/dashboard.
type Dashboard struct {
	TotalUsers        int64        `json:"total_users"`
	TotalCollectors   int64        `json:"total_collectors"`
	TotalListings     int64        `json:"total_listings"`
	AvailableListings int64        `json:"available_listings"`
	NegotiatingCount  int64        `json:"negotiating_listings"`
	CompletedListings int64        `json:"completed_listings"`
	GrossValue        domain.Money `json:"gross_transaction_value"`
	PlatformRevenue   domain.Money `json:"platform_revenue"`
	SellerPayouts     domain.Money `json:"seller_payouts"`
}

type statusCount struct {
	Status string
	Count  int64
}

type completedSums struct {
	Gross  decimal.Decimal
	Profit decimal.Decimal
}

// Dashboard aggregates users, listings by status and completed sale totals.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	db := s.DB.WithContext(ctx)
	out := &Dashboard{}

	if err := db.Model(&models.User{}).Count(&out.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if err := db.Model(&models.User{}).Where("user_type = ?", "collector").Count(&out.TotalCollectors).Error; err != nil {
		return nil, fmt.Errorf("count collectors: %w", err)
	}

	var counts []statusCount
	if err := db.Model(&models.Listing{}).Select("status, COUNT(*) AS count").Group("status").Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("count listings: %w", err)
	}
	for _, sc := range counts {
		out.TotalListings += sc.Count
		switch domain.Status(sc.Status) {
		case domain.StatusAvailable:
			out.AvailableListings = sc.Count
		case domain.StatusNegotiating:
			out.NegotiatingCount = sc.Count
		case domain.StatusCompleted:
			out.CompletedListings = sc.Count
		}
	}

	var sums completedSums
	if err := db.Model(&models.Listing{}).
		Select("COALESCE(SUM(negotiated_total), 0) AS gross, COALESCE(SUM(platform_profit), 0) AS profit").
		Where("status = ?", string(domain.StatusCompleted)).
		Scan(&sums).Error; err != nil {
		return nil, fmt.Errorf("sum completed listings: %w", err)
	}
	out.GrossValue = domain.NewMoney(sums.Gross)
	out.PlatformRevenue = domain.NewMoney(sums.Profit)
	out.SellerPayouts = out.GrossValue.Sub(out.PlatformRevenue)
	return out, nil
}
