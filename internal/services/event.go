package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"campus-directory/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrEventTitleRequired  = errors.New("title is required")
	ErrEventLocationNeeded = errors.New("location is required")
	ErrEventStartRequired  = errors.New("startsAt is required")
	ErrEventEndBeforeStart = errors.New("endsAt must not be before startsAt")
	ErrInvalidMaxAttendees = errors.New("maxAttendees must not be negative")
)

type CreateEventRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	BusinessID   *string    `json:"businessId,omitempty"`
	BusinessName *string    `json:"businessName,omitempty"`
	StartsAt     time.Time  `json:"startsAt"`
	EndsAt       *time.Time `json:"endsAt,omitempty"`
	Location     string     `json:"location"`
	Image        string     `json:"image"`
	Category     string     `json:"category"`
	MaxAttendees int        `json:"maxAttendees"`
}

func (r *CreateEventRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Location = strings.TrimSpace(r.Location)

	switch {
	case r.Title == "":
		return ErrEventTitleRequired
	case r.Location == "":
		return ErrEventLocationNeeded
	case r.StartsAt.IsZero():
		return ErrEventStartRequired
	case r.EndsAt != nil && r.EndsAt.Before(r.StartsAt):
		return ErrEventEndBeforeStart
	case r.MaxAttendees < 0:
		return ErrInvalidMaxAttendees
	}
	return nil
}

// EventQuery pages through events. With Upcoming set only events starting at
// or after Now are returned.
type EventQuery struct {
	Upcoming bool
	Now      time.Time
	Limit    int
	Offset   int
}

type EventService struct {
	db *bun.DB
}

func NewEventService(db *bun.DB) *EventService {
	return &EventService{db: db}
}

// List returns events ordered by start time.
func (s *EventService) List(ctx context.Context, q EventQuery) ([]models.Event, error) {
	evts := []models.Event{}
	query := s.db.NewSelect().Model(&evts)
	if q.Upcoming {
		query = query.Where("starts_at >= ?", q.Now)
	}
	err := query.
		Order("starts_at ASC").
		Limit(q.Limit).
		Offset(q.Offset).
		Scan(ctx)
	return evts, err
}

func (s *EventService) ByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	evt := new(models.Event)
	err := s.db.NewSelect().Model(evt).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return evt, nil
}

// Create stores a new event on behalf of creator.
func (s *EventService) Create(ctx context.Context, creator uuid.UUID, req CreateEventRequest) (*models.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	evt := buildEvent(creator, req, time.Now())
	if _, err := s.db.NewInsert().Model(evt).Exec(ctx); err != nil {
		return nil, err
	}
	return evt, nil
}

// buildEvent maps a validated request to an event row with all times in UTC.
func buildEvent(creator uuid.UUID, req CreateEventRequest, now time.Time) *models.Event {
	var endsAt *time.Time
	if req.EndsAt != nil {
		end := req.EndsAt.UTC()
		endsAt = &end
	}

	return &models.Event{
		ID:           uuid.New(),
		Title:        req.Title,
		Description:  req.Description,
		BusinessID:   req.BusinessID,
		BusinessName: req.BusinessName,
		StartsAt:     req.StartsAt.UTC(),
		EndsAt:       endsAt,
		Location:     req.Location,
		Image:        req.Image,
		Category:     req.Category,
		MaxAttendees: req.MaxAttendees,
		CreatedBy:    &creator,
		CreatedAt:    now.UTC(),
	}
}

// SeedEvents returns the demo events inserted on first start, scheduled
// relative to now so they stay upcoming.
func SeedEvents(now time.Time) []models.Event {
	day := now.UTC().Truncate(24 * time.Hour)
	networkingStart := day.AddDate(0, 0, 14).Add(10 * time.Hour)
	networkingEnd := networkingStart.Add(3 * time.Hour)
	pitchStart := day.AddDate(0, 0, 19).Add(14 * time.Hour)
	pitchEnd := pitchStart.Add(4 * time.Hour)

	return []models.Event{
		{
			ID:           uuid.New(),
			Title:        "Local Business Networking Event",
			Description:  "Connect with local entrepreneurs and business owners in Coimbatore.",
			StartsAt:     networkingStart,
			EndsAt:       &networkingEnd,
			Location:     "Coimbatore Business Center",
			Category:     "Networking",
			Attendees:    45,
			MaxAttendees: 100,
			CreatedAt:    now.UTC(),
		},
		{
			ID:           uuid.New(),
			Title:        "Startup Pitch Competition",
			Description:  "Watch innovative startups pitch their ideas to investors.",
			StartsAt:     pitchStart,
			EndsAt:       &pitchEnd,
			Location:     "Innovation Hub",
			Category:     "Competition",
			Attendees:    78,
			MaxAttendees: 150,
			CreatedAt:    now.UTC(),
		},
	}
}
