package listings

import (
	"context"
	"errors"
	"testing"
	"time"

	"scrapmarket-backend/internal/domain"
	"scrapmarket-backend/internal/infrastructure/database"
	"scrapmarket-backend/internal/infrastructure/lock"
	"scrapmarket-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	svc := &Service{
		DB:             db,
		Locker:         lock.NewLocalLocker(),
		Ledger:         GormLedger{},
		Clock:          domain.FixedClock{At: testNow},
		CommissionRate: domain.MustRate("0.10"),
	}
	return svc, db
}

func createUser(t *testing.T, db *gorm.DB, userType string) domain.Actor {
	u := models.User{
		Username:     "u-" + uuid.NewString()[:8],
		Email:        uuid.NewString() + "@test.com",
		PasswordHash: "x",
		UserType:     userType,
	}
	require.NoError(t, db.Create(&u).Error)
	return domain.Actor{ID: u.UserID, Role: domain.ParseRole(userType)}
}

func createListing(t *testing.T, svc *Service, seller domain.Actor) *domain.Listing {
	l, err := svc.CreateListing(context.Background(), seller, CreateListingInput{
		TrashType:    "plastic",
		Quantity:     domain.MustQuantity("100"),
		PricePerUnit: domain.MustMoney("12.00"),
		Location:     "Dhaka",
		IsNegotiable: true,
	})
	require.NoError(t, err)
	return l
}

func TestCreateListing_Validation(t *testing.T) {
	svc, db := setupService(t)
	seller := createUser(t, db, "user")
	ctx := context.Background()

	_, err := svc.CreateListing(ctx, seller, CreateListingInput{Location: "x", Quantity: domain.MustQuantity("1"), PricePerUnit: domain.MustMoney("1")})
	assert.Equal(t, ErrTrashTypeRequired, err)

	_, err = svc.CreateListing(ctx, seller, CreateListingInput{TrashType: "metal", Quantity: domain.MustQuantity("1"), PricePerUnit: domain.MustMoney("1")})
	assert.Equal(t, ErrLocationRequired, err)

	_, err = svc.CreateListing(ctx, seller, CreateListingInput{TrashType: "metal", Location: "x", Quantity: domain.MustQuantity("0"), PricePerUnit: domain.MustMoney("1")})
	assert.True(t, errors.Is(err, domain.ErrInvalidAmount))

	_, err = svc.CreateListing(ctx, seller, CreateListingInput{TrashType: "metal", Location: "x", Quantity: domain.MustQuantity("1"), PricePerUnit: domain.MustMoney("0")})
	assert.True(t, errors.Is(err, domain.ErrInvalidAmount))
}

func TestCreateListing_RejectsExtraDecimals(t *testing.T) {
	svc, db := setupService(t)
	seller := createUser(t, db, "user")
	ctx := context.Background()

	_, err := svc.CreateListing(ctx, seller, CreateListingInput{TrashType: "metal", Location: "x", Quantity: domain.MustQuantity("1"), PricePerUnit: domain.MustMoney("10.005")})
	assert.True(t, errors.Is(err, domain.ErrInvalidAmount))

	_, err = domain.ParseQuantity("0.0004")
	assert.True(t, errors.Is(err, domain.ErrInvalidAmount))

	var count int64
	require.NoError(t, db.Model(&models.Listing{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCreateAndGetListing(t *testing.T) {
	svc, db := setupService(t)
	seller := createUser(t, db, "user")
	l := createListing(t, svc, seller)

	got, err := svc.GetListing(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, got.Status)
	assert.Equal(t, seller.ID, got.OwnerID)
	assert.True(t, got.PricePerUnit.Equal(domain.MustMoney("12")))
	assert.Nil(t, got.Offer)
	assert.Equal(t, 0, got.Version)

	_, err = svc.GetListing(context.Background(), uuid.New())
	assert.Equal(t, ErrListingNotFound, err)
}

func TestOfferAcceptFlow_CreditsSeller(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	seller := createUser(t, db, "user")
	collector := createUser(t, db, "collector")
	l := createListing(t, svc, seller)

	res, err := svc.MakeOffer(ctx, collector, l.ID, domain.MustQuantity("50"), domain.MustMoney("10.00"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNegotiating, res.Listing.Status)
	assert.Equal(t, 1, res.Listing.Version)

	res, err = svc.AcceptOffer(ctx, seller, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, res.Listing.Status)
	assert.Equal(t, "50.00", res.Listing.PlatformProfit.String())
	assert.Equal(t, "450.00", res.Settlement.SellerPayout.String())

	stored, err := svc.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	require.NotNil(t, stored.CollectorID)
	assert.Equal(t, collector.ID, *stored.CollectorID)
	require.NotNil(t, stored.Offer)
	assert.True(t, stored.Offer.Total.Equal(domain.MustMoney("500")))
	require.NotNil(t, stored.PlatformProfit)
	assert.True(t, stored.PlatformProfit.Equal(domain.MustMoney("50")))
	require.NotNil(t, stored.CompletedAt)
	assert.Equal(t, 2, stored.Version)

	var u models.User
	require.NoError(t, db.Where("user_id = ?", seller.ID).First(&u).Error)
	assert.True(t, u.TotalEarnings.Equal(decimal.RequireFromString("450")), u.TotalEarnings.String())

	var entries []models.LedgerEntry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, l.ID, entries[0].ListingID)
	assert.Equal(t, LedgerKindSalePayout, entries[0].Kind)

	events, err := svc.Events(ctx, l.ID)
	require.NoError(t, err)
	var types []string
	for _, e := range events {
		types = append(types, e.EventType)
	}
	assert.ElementsMatch(t, []string{models.EventCreated, models.EventOfferMade, models.EventOfferAccepted}, types)
}

func TestDoubleAccept_CreditsOnce(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	seller := createUser(t, db, "user")
	collector := createUser(t, db, "collector")
	l := createListing(t, svc, seller)

	_, err := svc.MakeOffer(ctx, collector, l.ID, domain.MustQuantity("10"), domain.MustMoney("1.00"))
	require.NoError(t, err)
	_, err = svc.AcceptOffer(ctx, seller, l.ID)
	require.NoError(t, err)

	_, err = svc.AcceptOffer(ctx, seller, l.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	var count int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	var u models.User
	require.NoError(t, db.Where("user_id = ?", seller.ID).First(&u).Error)
	assert.True(t, u.TotalEarnings.Equal(decimal.RequireFromString("9")), u.TotalEarnings.String())
}

func TestDecideOnCompleted_OwnershipCheckedFirst(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	seller := createUser(t, db, "user")
	collector := createUser(t, db, "collector")
	l := createListing(t, svc, seller)

	_, err := svc.MakeOffer(ctx, collector, l.ID, domain.MustQuantity("10"), domain.MustMoney("2.00"))
	require.NoError(t, err)
	_, err = svc.AcceptOffer(ctx, seller, l.ID)
	require.NoError(t, err)

	stranger := createUser(t, db, "user")
	for _, actor := range []domain.Actor{stranger, collector} {
		_, err = svc.AcceptOffer(ctx, actor, l.ID)
		assert.True(t, errors.Is(err, domain.ErrUnauthorized))
		_, err = svc.RejectOffer(ctx, actor, l.ID)
		assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	}

	_, err = svc.AcceptOffer(ctx, seller, l.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	_, err = svc.RejectOffer(ctx, seller, l.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	stored, err := svc.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.Equal(t, 2, stored.Version)
}

func TestRejectOffer_ReturnsToAvailable(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	seller := createUser(t, db, "user")
	collector := createUser(t, db, "collector")
	l := createListing(t, svc, seller)

	_, err := svc.MakeOffer(ctx, collector, l.ID, domain.MustQuantity("10"), domain.MustMoney("5.00"))
	require.NoError(t, err)

	_, err = svc.RejectOffer(ctx, collector, l.ID)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	res, err := svc.RejectOffer(ctx, seller, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, res.Listing.Status)

	stored, err := svc.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, stored.Status)
	assert.Nil(t, stored.CollectorID)
	assert.Nil(t, stored.Offer)

	other := createUser(t, db, "collector")
	_, err = svc.MakeOffer(ctx, other, l.ID, domain.MustQuantity("100"), domain.MustMoney("12.00"))
	require.NoError(t, err)
}

func TestMakeOffer_Errors(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	seller := createUser(t, db, "user")
	collector := createUser(t, db, "collector")
	l := createListing(t, svc, seller)

	_, err := svc.MakeOffer(ctx, seller, l.ID, domain.MustQuantity("1"), domain.MustMoney("1"))
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	_, err = svc.MakeOffer(ctx, collector, l.ID, domain.MustQuantity("100.01"), domain.MustMoney("1"))
	assert.True(t, errors.Is(err, domain.ErrQuantityExceeded))

	_, err = svc.MakeOffer(ctx, collector, l.ID, domain.MustQuantity("99.999"), domain.MustMoney("10.005"))
	assert.True(t, errors.Is(err, domain.ErrInvalidAmount))

	_, err = svc.MakeOffer(ctx, collector, uuid.New(), domain.MustQuantity("1"), domain.MustMoney("1"))
	assert.Equal(t, ErrListingNotFound, err)

	stored, err := svc.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, stored.Status)
	assert.Equal(t, 0, stored.Version)
}

func TestSecondCollectorRejected(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	seller := createUser(t, db, "user")
	l := createListing(t, svc, seller)

	_, err := svc.MakeOffer(ctx, createUser(t, db, "collector"), l.ID, domain.MustQuantity("1"), domain.MustMoney("1"))
	require.NoError(t, err)
	_, err = svc.MakeOffer(ctx, createUser(t, db, "collector"), l.ID, domain.MustQuantity("1"), domain.MustMoney("2"))
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
}

func TestSaveVersioned_StaleSnapshot(t *testing.T) {
	svc, db := setupService(t)
	seller := createUser(t, db, "user")
	l := createListing(t, svc, seller)

	snapshot, err := svc.GetListing(context.Background(), l.ID)
	require.NoError(t, err)
	require.NoError(t, saveVersioned(db, *snapshot, map[string]interface{}{"description": "first"}))

	err = saveVersioned(db, *snapshot, map[string]interface{}{"description": "second"})
	assert.Equal(t, ErrConflict, err)

	stored, err := svc.GetListing(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", stored.Description)
	assert.Equal(t, 1, stored.Version)
}

func TestEditAndDeleteListing(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	seller := createUser(t, db, "user")
	collector := createUser(t, db, "collector")
	l := createListing(t, svc, seller)

	price := domain.MustMoney("15.50")
	desc := "clean bottles"
	edited, err := svc.EditListing(ctx, seller, l.ID, EditListingInput{PricePerUnit: &price, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "15.50", edited.PricePerUnit.String())
	assert.Equal(t, desc, edited.Description)

	_, err = svc.EditListing(ctx, seller, l.ID, EditListingInput{})
	assert.Equal(t, ErrNoChanges, err)

	tooPrecise := domain.MustMoney("15.555")
	_, err = svc.EditListing(ctx, seller, l.ID, EditListingInput{PricePerUnit: &tooPrecise})
	assert.True(t, errors.Is(err, domain.ErrInvalidAmount))

	_, err = svc.EditListing(ctx, collector, l.ID, EditListingInput{Description: &desc})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	_, err = svc.MakeOffer(ctx, collector, l.ID, domain.MustQuantity("1"), domain.MustMoney("1"))
	require.NoError(t, err)
	err = svc.DeleteListing(ctx, seller, l.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	_, err = svc.RejectOffer(ctx, seller, l.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteListing(ctx, seller, l.ID))
	_, err = svc.GetListing(ctx, l.ID)
	assert.Equal(t, ErrListingNotFound, err)
}

func TestListQueries(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	seller := createUser(t, db, "user")
	collector := createUser(t, db, "collector")
	a := createListing(t, svc, seller)
	createListing(t, svc, seller)
	createListing(t, svc, createUser(t, db, "user"))

	_, err := svc.MakeOffer(ctx, collector, a.ID, domain.MustQuantity("1"), domain.MustMoney("1"))
	require.NoError(t, err)

	available, err := svc.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Len(t, available, 2)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := svc.ListByOwner(ctx, seller.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	collected, err := svc.ListByCollector(ctx, collector.ID)
	require.NoError(t, err)
	require.Len(t, collected, 1)
	assert.Equal(t, a.ID, collected[0].ID)
}

func TestCreditSeller_OncePerListing(t *testing.T) {
	_, db := setupService(t)
	seller := createUser(t, db, "user")
	adj := domain.LedgerAdjustment{SellerID: seller.ID, ListingID: uuid.New(), CreditAmount: domain.MustMoney("10.00")}

	require.NoError(t, GormLedger{}.CreditSeller(db, adj))
	assert.Error(t, GormLedger{}.CreditSeller(db, adj))

	missing := domain.LedgerAdjustment{SellerID: uuid.New(), ListingID: uuid.New(), CreditAmount: domain.MustMoney("1")}
	assert.Equal(t, ErrSellerNotFound, GormLedger{}.CreditSeller(db, missing))
}
