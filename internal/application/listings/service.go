package listings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"scrapmarket-backend/internal/application/negotiation"
	policies "scrapmarket-backend/internal/application/policies/listing"
	"scrapmarket-backend/internal/domain"
	"scrapmarket-backend/internal/infrastructure/database"
	"scrapmarket-backend/internal/infrastructure/lock"
	"scrapmarket-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrListingNotFound   = errors.New("Listing not found")
	ErrConflict          = errors.New("Listing was changed by another request, please retry")
	ErrTrashTypeRequired = errors.New("Trash type is required")
	ErrLocationRequired  = errors.New("Location is required")
	ErrNoChanges         = errors.New("No valid changes provided")
)

// Service is the persistence side of the negotiation core: it loads a
// listing, runs the guard and the state machine, and saves the result with
// the ledger credit in one transaction.
type Service struct {
	DB             *gorm.DB
	Locker         lock.Locker
	Ledger         Ledger
	Clock          domain.Clock
	CommissionRate domain.Rate
}

func (s *Service) ledger() Ledger {
	if s.Ledger == nil {
		return GormLedger{}
	}
	return s.Ledger
}

func (s *Service) now() domain.Clock {
	if s.Clock == nil {
		return domain.SystemClock{}
	}
	return s.Clock
}

type CreateListingInput struct {
	TrashType    string
	Quantity     domain.Quantity
	PricePerUnit domain.Money
	Location     string
	Description  string
	PhoneNumber  string
	MapLink      string
	IsNegotiable bool
}

// CreateListing stores a new Available listing owned by the actor.
func (s *Service) CreateListing(ctx context.Context, owner domain.Actor, in CreateListingInput) (*domain.Listing, error) {
	if strings.TrimSpace(in.TrashType) == "" {
		return nil, ErrTrashTypeRequired
	}
	if strings.TrimSpace(in.Location) == "" {
		return nil, ErrLocationRequired
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.InvalidAmount("quantity must be greater than zero")
	}
	if _, err := domain.NewPrice(in.PricePerUnit.Decimal()); err != nil {
		return nil, err
	}

	l := domain.Listing{
		ID:              uuid.New(),
		OwnerID:         owner.ID,
		TrashType:       strings.TrimSpace(in.TrashType),
		Location:        strings.TrimSpace(in.Location),
		Description:     in.Description,
		PhoneNumber:     in.PhoneNumber,
		MapLink:         in.MapLink,
		QuantityOffered: in.Quantity,
		PricePerUnit:    in.PricePerUnit,
		IsNegotiable:    in.IsNegotiable,
		Status:          domain.StatusAvailable,
		CreatedAt:       s.now().Now(),
	}
	row := models.ListingFromDomain(l)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create listing: %w", err)
		}
		return appendEvent(tx, l.ID, models.EventCreated, &owner.ID, map[string]interface{}{
			"quantity_offered": l.QuantityOffered.String(),
			"price_per_unit":   l.PricePerUnit.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("listing_id", l.ID.String()).Str("owner_id", owner.ID.String()).Msg("listing created")
	return &l, nil
}

// GetListing returns one listing by id.
func (s *Service) GetListing(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	var row models.Listing
	if err := s.DB.WithContext(ctx).Where("listing_id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	l, err := row.ToDomain()
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListAvailable returns open listings, newest first.
func (s *Service) ListAvailable(ctx context.Context) ([]domain.Listing, error) {
	return s.find(ctx, s.DB.WithContext(ctx).Where("status = ?", string(domain.StatusAvailable)))
}

// ListAll returns every listing, newest first.
func (s *Service) ListAll(ctx context.Context) ([]domain.Listing, error) {
	return s.find(ctx, s.DB.WithContext(ctx))
}

// ListByOwner returns the seller's own listings.
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Listing, error) {
	return s.find(ctx, s.DB.WithContext(ctx).Where("owner_id = ?", ownerID))
}

// ListByCollector returns listings the collector is negotiating or has bought.
func (s *Service) ListByCollector(ctx context.Context, collectorID uuid.UUID) ([]domain.Listing, error) {
	return s.find(ctx, s.DB.WithContext(ctx).Where("collector_id = ?", collectorID))
}

func (s *Service) find(ctx context.Context, q *gorm.DB) ([]domain.Listing, error) {
	var rows []models.Listing
	if err := q.Order(`"createdAt" DESC`).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}
	out := make([]domain.Listing, 0, len(rows))
	for i := range rows {
		l, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

type EditListingInput struct {
	PricePerUnit *domain.Money
	Description  *string
	IsNegotiable *bool
}

// EditListing changes the owner-editable fields of an Available listing.
func (s *Service) EditListing(ctx context.Context, actor domain.Actor, id uuid.UUID, in EditListingInput) (*domain.Listing, error) {
	var out domain.Listing
	err := s.mutate(ctx, id, func(tx *gorm.DB, current domain.Listing) error {
		if err := policies.CanEditOrDelete(current, actor.ID, actor.Role).Err(); err != nil {
			return err
		}
		updates := map[string]interface{}{}
		eventData := map[string]interface{}{}
		next := current
		if in.PricePerUnit != nil {
			price, err := domain.NewPrice(in.PricePerUnit.Decimal())
			if err != nil {
				return err
			}
			if !price.Equal(current.PricePerUnit) {
				next.PricePerUnit = price
				updates["price_per_unit"] = price.Decimal()
				eventData["new_price_per_unit"] = price.String()
			}
		}
		if in.Description != nil && *in.Description != current.Description {
			next.Description = *in.Description
			updates["description"] = *in.Description
			eventData["description_changed"] = true
		}
		if in.IsNegotiable != nil && *in.IsNegotiable != current.IsNegotiable {
			next.IsNegotiable = *in.IsNegotiable
			updates["is_negotiable"] = *in.IsNegotiable
			eventData["is_negotiable"] = *in.IsNegotiable
		}
		if len(updates) == 0 {
			return ErrNoChanges
		}
		if err := saveVersioned(tx, current, updates); err != nil {
			return err
		}
		next.Version = current.Version + 1
		out = next
		return appendEvent(tx, id, models.EventUpdated, &actor.ID, eventData)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteListing removes an Available listing. Rows are soft-deleted so the
// event log keeps its reference.
func (s *Service) DeleteListing(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	return s.mutate(ctx, id, func(tx *gorm.DB, current domain.Listing) error {
		if err := policies.CanEditOrDelete(current, actor.ID, actor.Role).Err(); err != nil {
			return err
		}
		res := tx.Where("listing_id = ? AND version = ?", id, current.Version).Delete(&models.Listing{})
		if res.Error != nil {
			return fmt.Errorf("delete listing: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return appendEvent(tx, id, models.EventDeleted, &actor.ID, map[string]interface{}{})
	})
}

// MakeOffer moves an Available listing into negotiation with the collector's terms.
func (s *Service) MakeOffer(ctx context.Context, actor domain.Actor, id uuid.UUID, weight domain.Quantity, price domain.Money) (*negotiation.Result, error) {
	return s.transition(ctx, actor, id, policies.CanMakeOffer,
		negotiation.MakeOffer{Weight: weight, PricePerUnit: price}, models.EventOfferMade)
}

// AcceptOffer completes the sale and credits the seller's payout.
func (s *Service) AcceptOffer(ctx context.Context, actor domain.Actor, id uuid.UUID) (*negotiation.Result, error) {
	return s.transition(ctx, actor, id, policies.CanAcceptOrReject,
		negotiation.AcceptOffer{CommissionRate: s.CommissionRate}, models.EventOfferAccepted)
}

// RejectOffer returns the listing to Available and clears the offer.
func (s *Service) RejectOffer(ctx context.Context, actor domain.Actor, id uuid.UUID) (*negotiation.Result, error) {
	return s.transition(ctx, actor, id, policies.CanAcceptOrReject,
		negotiation.RejectOffer{}, models.EventOfferRejected)
}

type guardFunc func(domain.Listing, uuid.UUID, domain.Role) policies.Decision

func (s *Service) transition(ctx context.Context, actor domain.Actor, id uuid.UUID, guard guardFunc, action negotiation.Action, eventType string) (*negotiation.Result, error) {
	var out negotiation.Result
	err := s.mutate(ctx, id, func(tx *gorm.DB, current domain.Listing) error {
		if err := guard(current, actor.ID, actor.Role).Err(); err != nil {
			return err
		}
		res, err := negotiation.Apply(current, action, actor, s.now().Now())
		if err != nil {
			return err
		}
		if err := saveVersioned(tx, current, transitionColumns(res.Listing)); err != nil {
			return err
		}
		if res.Credit != nil {
			if err := s.ledger().CreditSeller(tx, *res.Credit); err != nil {
				return err
			}
		}
		if err := appendEvent(tx, id, eventType, &actor.ID, eventPayload(res)); err != nil {
			return err
		}
		res.Listing.Version = current.Version + 1
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("listing_id", id.String()).
		Str("actor_id", actor.ID.String()).
		Str("action", action.Name()).
		Str("status", string(out.Listing.Status)).
		Msg("listing transition applied")
	return &out, nil
}

// mutate runs fn under the listing lock inside a transaction, handing it the
// freshly loaded snapshot.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(tx *gorm.DB, current domain.Listing) error) error {
	run := func(ctx context.Context) error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			current, err := loadForUpdate(tx, id)
			if err != nil {
				return err
			}
			return fn(tx, current)
		})
	}
	if s.Locker == nil {
		return run(ctx)
	}
	err := s.Locker.WithLock(ctx, lock.ListingKey(id.String()), run)
	if errors.Is(err, lock.ErrBusy) {
		return ErrConflict
	}
	return err
}

func loadForUpdate(tx *gorm.DB, id uuid.UUID) (domain.Listing, error) {
	q := tx.Where("listing_id = ?", id)
	if database.IsPostgres(tx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row models.Listing
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Listing{}, ErrListingNotFound
		}
		return domain.Listing{}, fmt.Errorf("load listing: %w", err)
	}
	return row.ToDomain()
}

// saveVersioned writes updates only if nobody bumped the version since the
// snapshot was read.
func saveVersioned(tx *gorm.DB, snapshot domain.Listing, updates map[string]interface{}) error {
	updates["version"] = snapshot.Version + 1
	res := tx.Model(&models.Listing{}).
		Where("listing_id = ? AND version = ?", snapshot.ID, snapshot.Version).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("save listing: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// transitionColumns lists every column the state machine may change. The
// negotiated columns are always written together, null or not.
func transitionColumns(l domain.Listing) map[string]interface{} {
	row := models.ListingFromDomain(l)
	return map[string]interface{}{
		"status":                    row.Status,
		"collector_id":              row.CollectorID,
		"negotiated_weight":         row.NegotiatedWeight,
		"negotiated_price_per_unit": row.NegotiatedPricePerUnit,
		"negotiated_total":          row.NegotiatedTotal,
		"platform_profit":           row.PlatformProfit,
		"completed_at":              row.CompletedAt,
	}
}

func eventPayload(res negotiation.Result) map[string]interface{} {
	data := map[string]interface{}{"status": string(res.Listing.Status)}
	if o := res.Listing.Offer; o != nil {
		data["negotiated_weight"] = o.Weight.String()
		data["negotiated_price_per_unit"] = o.PricePerUnit.String()
		data["negotiated_total"] = o.Total.String()
	}
	if res.Settlement != nil {
		data["platform_profit"] = res.Settlement.PlatformProfit.String()
		data["seller_payout"] = res.Settlement.SellerPayout.String()
	}
	return data
}

func appendEvent(tx *gorm.DB, listingID uuid.UUID, eventType string, actorID *uuid.UUID, data map[string]interface{}) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := tx.Create(&models.ListingEvent{
		ListingID: listingID,
		EventType: eventType,
		EventData: datatypes.JSON(b),
		ActorID:   actorID,
	}).Error; err != nil {
		return fmt.Errorf("record listing event: %w", err)
	}
	return nil
}

// Events returns a listing's history, oldest first.
func (s *Service) Events(ctx context.Context, listingID uuid.UUID) ([]models.ListingEvent, error) {
	var events []models.ListingEvent
	if err := s.DB.WithContext(ctx).Where("listing_id = ?", listingID).Order(`"createdAt" ASC`).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
