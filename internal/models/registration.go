package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const RegistrationPending = "PENDING"

// BusinessRegistration is a self-registration request from a business owner.
// It is stored for review and never published into the live directory.
type BusinessRegistration struct {
	bun.BaseModel `bun:"table:business_registrations,alias:br"`

	ID              uuid.UUID `bun:",pk,type:uuid" json:"id"`
	OwnerID         uuid.UUID `bun:"owner_id,type:uuid,notnull" json:"ownerId"`
	Name            string    `bun:"name,notnull" json:"name"`
	Category        string    `bun:"category,notnull" json:"category"`
	Description     string    `bun:"description" json:"description"`
	Address         string    `bun:"address,notnull" json:"address"`
	Phone           string    `bun:"phone" json:"phone"`
	Email           string    `bun:"email" json:"email"`
	Website         string    `bun:"website" json:"website,omitempty"`
	PriceRange      string    `bun:"price_range" json:"priceRange"`
	OperatingHours  string    `bun:"operating_hours" json:"operatingHours"`
	StudentDiscount bool      `bun:"student_discount,notnull,default:false" json:"studentDiscount"`
	Latitude        float64   `bun:"latitude,notnull" json:"latitude"`
	Longitude       float64   `bun:"longitude,notnull" json:"longitude"`
	Status          string    `bun:"status,notnull,default:'PENDING'" json:"status"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}
