package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events,alias:ev"`

	ID           uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Title        string     `bun:"title,notnull" json:"title"`
	Description  string     `bun:"description" json:"description"`
	BusinessID   *string    `bun:"business_id" json:"businessId,omitempty"`
	BusinessName *string    `bun:"business_name" json:"businessName,omitempty"`
	StartsAt     time.Time  `bun:"starts_at,notnull" json:"startsAt"`
	EndsAt       *time.Time `bun:"ends_at" json:"endsAt,omitempty"`
	Location     string     `bun:"location,notnull" json:"location"`
	Image        string     `bun:"image" json:"image"`
	Category     string     `bun:"category" json:"category"`
	Attendees    int        `bun:"attendees,notnull,default:0" json:"attendees"`
	MaxAttendees int        `bun:"max_attendees,notnull,default:0" json:"maxAttendees"`
	CreatedBy    *uuid.UUID `bun:"created_by,type:uuid" json:"-"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}
