package policies

import (
	"scrapmarket-backend/internal/domain"

	"github.com/google/uuid"
)

// Reason codes explaining a guard decision.
const (
	ReasonAllowed        = "allowed"
	ReasonNotCollector   = "actor_not_collector"
	ReasonOwnListing     = "actor_is_owner"
	ReasonNotOwner       = "actor_not_owner"
	ReasonNotAvailable   = "listing_not_available"
	ReasonNotNegotiating = "listing_not_negotiating"
)

// Decision is the outcome of a guard predicate.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision             { return Decision{Allowed: true, Reason: ReasonAllowed} }
func deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// CanMakeOffer: a collector who does not own the listing, while it is Available.
func CanMakeOffer(l domain.Listing, actorID uuid.UUID, role domain.Role) Decision {
	if role != domain.RoleCollector {
		return deny(ReasonNotCollector)
	}
	if actorID == l.OwnerID {
		return deny(ReasonOwnListing)
	}
	if l.Status != domain.StatusAvailable {
		return deny(ReasonNotAvailable)
	}
	return allow()
}

// CanAcceptOrReject: only the owner, only while Negotiating.
func CanAcceptOrReject(l domain.Listing, actorID uuid.UUID, _ domain.Role) Decision {
	if actorID != l.OwnerID {
		return deny(ReasonNotOwner)
	}
	if l.Status != domain.StatusNegotiating {
		return deny(ReasonNotNegotiating)
	}
	return allow()
}

// CanEditOrDelete: only the owner, only while Available.
func CanEditOrDelete(l domain.Listing, actorID uuid.UUID, _ domain.Role) Decision {
	if actorID != l.OwnerID {
		return deny(ReasonNotOwner)
	}
	if l.Status != domain.StatusAvailable {
		return deny(ReasonNotAvailable)
	}
	return allow()
}

// Err converts a denial into the matching core error; nil when allowed.
// Ownership and role failures are Unauthorized, state failures are
// InvalidTransition.
func (d Decision) Err() error {
	switch d.Reason {
	case ReasonAllowed:
		return nil
	case ReasonNotAvailable, ReasonNotNegotiating:
		return domain.InvalidTransition(d.Reason)
	default:
		return domain.Unauthorized(d.Reason)
	}
}
