// Package negotiation holds the listing lifecycle:
//
//	Available --MakeOffer--> Negotiating --AcceptOffer--> Completed
//	    ^                         |
//	    +-------RejectOffer-------+
//
// Apply is pure. It never touches storage and never mutates its input; the
// caller loads a snapshot, applies an action and persists the returned
// listing, serializing that cycle per listing.
package negotiation

import (
	"time"

	"scrapmarket-backend/internal/application/settlement"
	"scrapmarket-backend/internal/domain"
)

// Action is a request to move a listing to its next state.
type Action interface {
	Name() string
}

// MakeOffer is a collector proposing a weight and unit price.
type MakeOffer struct {
	Weight       domain.Quantity
	PricePerUnit domain.Money
}

// AcceptOffer is the owner closing the deal at the configured commission.
type AcceptOffer struct {
	CommissionRate domain.Rate
}

// RejectOffer is the owner declining the pending offer.
type RejectOffer struct{}

func (MakeOffer) Name() string   { return "make_offer" }
func (AcceptOffer) Name() string { return "accept_offer" }
func (RejectOffer) Name() string { return "reject_offer" }

// Result is the next listing state plus, on completion, the settlement and
// the credit owed to the seller.
type Result struct {
	Listing    domain.Listing
	Settlement *settlement.Result
	Credit     *domain.LedgerAdjustment
}

// Apply evaluates action against l on behalf of actor. On error the returned
// Result is empty and l is untouched.
func Apply(l domain.Listing, action Action, actor domain.Actor, now time.Time) (Result, error) {
	switch l.Status {
	case domain.StatusAvailable:
		if a, ok := action.(MakeOffer); ok {
			return makeOffer(l, a, actor)
		}
	case domain.StatusNegotiating:
		switch a := action.(type) {
		case AcceptOffer:
			return acceptOffer(l, a, actor, now)
		case RejectOffer:
			return rejectOffer(l, actor)
		}
	}
	return Result{}, domain.InvalidTransition(invalidReason(l.Status, action))
}

func invalidReason(status domain.Status, action Action) string {
	name := "unknown"
	if action != nil {
		name = action.Name()
	}
	return name + " not allowed from " + string(status)
}

func makeOffer(l domain.Listing, a MakeOffer, actor domain.Actor) (Result, error) {
	if !actor.IsCollector() {
		return Result{}, domain.Unauthorized("only collectors can make offers")
	}
	if actor.ID == l.OwnerID {
		return Result{}, domain.Unauthorized("owners cannot offer on their own listing")
	}
	if !a.Weight.IsPositive() {
		return Result{}, domain.InvalidAmount("weight must be greater than zero")
	}
	if a.PricePerUnit.IsNegative() {
		return Result{}, domain.InvalidAmount("price per unit cannot be negative")
	}
	if !a.PricePerUnit.WithinMinorUnits() {
		return Result{}, domain.InvalidAmount("price per unit has more than 2 decimal places")
	}
	if a.Weight.GreaterThan(l.QuantityOffered) {
		return Result{}, domain.QuantityExceeded("offered weight " + a.Weight.String() + " exceeds available " + l.QuantityOffered.String())
	}

	collector := actor.ID
	offer := domain.NewOffer(a.Weight, a.PricePerUnit)
	next := l
	next.Status = domain.StatusNegotiating
	next.CollectorID = &collector
	next.Offer = &offer
	return Result{Listing: next}, nil
}

func acceptOffer(l domain.Listing, a AcceptOffer, actor domain.Actor, now time.Time) (Result, error) {
	if actor.ID != l.OwnerID {
		return Result{}, domain.Unauthorized("only the owner can accept an offer")
	}
	if l.Offer == nil || l.CollectorID == nil {
		return Result{}, domain.InvalidTransition("negotiating listing has no offer")
	}
	split, err := settlement.Compute(l.Offer.Total, a.CommissionRate)
	if err != nil {
		return Result{}, err
	}

	profit := split.PlatformProfit
	completedAt := now
	next := l
	next.Status = domain.StatusCompleted
	next.PlatformProfit = &profit
	next.CompletedAt = &completedAt
	return Result{
		Listing:    next,
		Settlement: &split,
		Credit: &domain.LedgerAdjustment{
			SellerID:     l.OwnerID,
			ListingID:    l.ID,
			CreditAmount: split.SellerPayout,
		},
	}, nil
}

func rejectOffer(l domain.Listing, actor domain.Actor) (Result, error) {
	if actor.ID != l.OwnerID {
		return Result{}, domain.Unauthorized("only the owner can reject an offer")
	}
	next := l
	next.Status = domain.StatusAvailable
	next.CollectorID = nil
	next.Offer = nil
	return Result{Listing: next}, nil
}
