package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:rv"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	BusinessID string    `bun:"business_id,notnull" json:"businessId"`
	UserName   string    `bun:"user_name,notnull" json:"userName"`
	UserAvatar string    `bun:"user_avatar" json:"userAvatar"`
	Rating     int       `bun:"rating,notnull" json:"rating"`
	Comment    string    `bun:"comment,notnull" json:"comment"`
	Photos     []string  `bun:"photos,array" json:"photos,omitempty"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"date"`
}

// RatingSummary aggregates reviews for a business.
type RatingSummary struct {
	BusinessID string  `json:"businessId"`
	Average    float64 `json:"average"`
	Count      int     `json:"count"`
}
