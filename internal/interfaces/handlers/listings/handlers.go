package listings

import (
	"errors"

	listsvc "scrapmarket-backend/internal/application/listings"
	"scrapmarket-backend/internal/application/negotiation"
	"scrapmarket-backend/internal/domain"
	"scrapmarket-backend/internal/middleware"
	"scrapmarket-backend/internal/pkg/response"
	"scrapmarket-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *listsvc.Service
}

// CreateListingRequest body. Amounts are decimal strings.
type CreateListingRequest struct {
	TrashType    string `json:"trash_type" validate:"required,max=50"`
	Quantity     string `json:"quantity" validate:"required,positive_amount,max_scale=3"`
	PricePerUnit string `json:"price_per_unit" validate:"required,positive_amount,max_scale=2"`
	Location     string `json:"location" validate:"required,max=255"`
	Description  string `json:"description"`
	PhoneNumber  string `json:"phone_number" validate:"omitempty,max=15"`
	MapLink      string `json:"map_link" validate:"omitempty,url,max=500"`
	IsNegotiable bool   `json:"is_negotiable"`
}

// EditListingRequest body; absent fields are left unchanged.
type EditListingRequest struct {
	PricePerUnit *string `json:"price_per_unit" validate:"omitempty,positive_amount,max_scale=2"`
	Description  *string `json:"description"`
	IsNegotiable *bool   `json:"is_negotiable"`
}

// OfferRequest body for POST /listings/:id/offer.
type OfferRequest struct {
	Weight       string `json:"weight" validate:"required,positive_amount,max_scale=3"`
	PricePerUnit string `json:"price_per_unit" validate:"required,nonnegative_amount,max_scale=2"`
}

// POST /api/v1/listings
func (h *Handlers) CreateListing(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	if req.PhoneNumber != "" && !validation.IsValidPhone(req.PhoneNumber) {
		return response.BadRequest(c, "Invalid phone number")
	}
	qty, err := domain.ParseQuantity(req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	price, err := domain.ParseMoney(req.PricePerUnit)
	if err != nil {
		return writeError(c, err)
	}

	l, err := h.Service.CreateListing(c.UserContext(), actor, listsvc.CreateListingInput{
		TrashType:    req.TrashType,
		Quantity:     qty,
		PricePerUnit: price,
		Location:     req.Location,
		Description:  req.Description,
		PhoneNumber:  req.PhoneNumber,
		MapLink:      req.MapLink,
		IsNegotiable: req.IsNegotiable,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.SuccessCreated(c, "Listing created successfully", fiber.Map{"listing": l}, nil)
}

// GET /api/v1/listings
func (h *Handlers) ListAvailable(c *fiber.Ctx) error {
	items, err := h.Service.ListAvailable(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return response.List(c, "Listings fetched successfully", "listings", items)
}

// GET /api/v1/listings/all
func (h *Handlers) ListAll(c *fiber.Ctx) error {
	items, err := h.Service.ListAll(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return response.List(c, "Listings fetched successfully", "listings", items)
}

// GET /api/v1/listings/mine
func (h *Handlers) ListMine(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	items, err := h.Service.ListByOwner(c.UserContext(), actor.ID)
	if err != nil {
		return writeError(c, err)
	}
	return response.List(c, "Listings fetched successfully", "listings", items)
}

// GET /api/v1/listings/collected
func (h *Handlers) ListCollected(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	items, err := h.Service.ListByCollector(c.UserContext(), actor.ID)
	if err != nil {
		return writeError(c, err)
	}
	return response.List(c, "Listings fetched successfully", "listings", items)
}

// GET /api/v1/listings/:id
func (h *Handlers) GetListing(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid listing ID")
	}
	l, err := h.Service.GetListing(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Listing fetched successfully", fiber.Map{"listing": l}, nil)
}

// PUT /api/v1/listings/:id
func (h *Handlers) EditListing(c *fiber.Ctx) error {
	actor, id, ok, err := actorAndID(c)
	if !ok {
		return err
	}
	var req EditListingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	in := listsvc.EditListingInput{Description: req.Description, IsNegotiable: req.IsNegotiable}
	if req.PricePerUnit != nil {
		price, err := domain.ParseMoney(*req.PricePerUnit)
		if err != nil {
			return writeError(c, err)
		}
		in.PricePerUnit = &price
	}
	l, err := h.Service.EditListing(c.UserContext(), actor, id, in)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Listing updated successfully", fiber.Map{"listing": l}, nil)
}

// DELETE /api/v1/listings/:id
func (h *Handlers) DeleteListing(c *fiber.Ctx) error {
	actor, id, ok, err := actorAndID(c)
	if !ok {
		return err
	}
	if err := h.Service.DeleteListing(c.UserContext(), actor, id); err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Listing deleted successfully", fiber.Map{"listing_id": id}, nil)
}

// POST /api/v1/listings/:id/offer
func (h *Handlers) MakeOffer(c *fiber.Ctx) error {
	actor, id, ok, err := actorAndID(c)
	if !ok {
		return err
	}
	var req OfferRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	weight, err := domain.ParseQuantity(req.Weight)
	if err != nil {
		return writeError(c, err)
	}
	price, err := domain.ParseMoney(req.PricePerUnit)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.Service.MakeOffer(c.UserContext(), actor, id, weight, price)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Offer submitted successfully", transitionBody(res), nil)
}

// POST /api/v1/listings/:id/accept
func (h *Handlers) AcceptOffer(c *fiber.Ctx) error {
	actor, id, ok, err := actorAndID(c)
	if !ok {
		return err
	}
	res, err := h.Service.AcceptOffer(c.UserContext(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Offer accepted", transitionBody(res), nil)
}

// POST /api/v1/listings/:id/reject
func (h *Handlers) RejectOffer(c *fiber.Ctx) error {
	actor, id, ok, err := actorAndID(c)
	if !ok {
		return err
	}
	res, err := h.Service.RejectOffer(c.UserContext(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Offer rejected", transitionBody(res), nil)
}

// GET /api/v1/listings/:id/events
func (h *Handlers) ListEvents(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid listing ID")
	}
	events, err := h.Service.Events(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return response.List(c, "Listing events fetched successfully", "events", events)
}

// actorAndID reads the session actor and :id. When ok is false the response
// has already been written and err is what the handler should return.
func actorAndID(c *fiber.Ctx) (domain.Actor, uuid.UUID, bool, error) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return domain.Actor{}, uuid.Nil, false, response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.Actor{}, uuid.Nil, false, response.BadRequest(c, "Invalid listing ID")
	}
	return actor, id, true, nil
}

func transitionBody(res *negotiation.Result) fiber.Map {
	body := fiber.Map{"listing": res.Listing}
	if res.Settlement != nil {
		body["settlement"] = fiber.Map{
			"platform_profit": res.Settlement.PlatformProfit,
			"seller_payout":   res.Settlement.SellerPayout,
		}
	}
	return body
}

// writeError maps service errors onto the error envelope.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case middleware.IsListingError(err):
		return response.Error(c, err.Error(), middleware.StatusForKind(err), nil)
	case errors.Is(err, listsvc.ErrListingNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, listsvc.ErrConflict):
		return response.Conflict(c, err.Error())
	case errors.Is(err, listsvc.ErrTrashTypeRequired),
		errors.Is(err, listsvc.ErrLocationRequired),
		errors.Is(err, listsvc.ErrNoChanges):
		return response.BadRequest(c, err.Error())
	default:
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path()).Msg("listing request failed")
		return response.Internal(c)
	}
}
