package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Listing event types, appended in the same transaction as the change they record.
const (
	EventCreated       = "CREATED"
	EventUpdated       = "UPDATED"
	EventDeleted       = "DELETED"
	EventOfferMade     = "OFFER_MADE"
	EventOfferAccepted = "OFFER_ACCEPTED"
	EventOfferRejected = "OFFER_REJECTED"
)

type ListingEvent struct {
	EventID   uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	ListingID uuid.UUID      `gorm:"column:listing_id;type:uuid;not null;index" json:"listing_id"`
	EventType string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	EventData datatypes.JSON `gorm:"column:event_data;type:jsonb;not null" json:"event_data"`
	ActorID   *uuid.UUID     `gorm:"column:actor_id;type:uuid" json:"actor_id"`
	CreatedAt time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (ListingEvent) TableName() string {
	return "ListingEvents"
}

func (le *ListingEvent) BeforeCreate(tx *gorm.DB) error {
	if le.EventID == uuid.Nil {
		le.EventID = uuid.New()
	}
	return nil
}
