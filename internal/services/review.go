package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"campus-directory/internal/events"
	"campus-directory/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

var (
	ErrBusinessIDRequired = errors.New("businessId is required")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrCommentRequired    = errors.New("comment is required")
)

const (
	MinRating = 1
	MaxRating = 5

	anonymousReviewer = "Anonymous"
)

// CreateReviewRequest represents the request body
type CreateReviewRequest struct {
	BusinessID string   `json:"businessId"`
	UserName   string   `json:"userName"`
	UserAvatar string   `json:"userAvatar"`
	Rating     int      `json:"rating"`
	Comment    string   `json:"comment"`
	Photos     []string `json:"photos,omitempty"`
}

// Normalize trims the request, applies defaults and validates it.
func (r *CreateReviewRequest) Normalize() error {
	r.BusinessID = strings.TrimSpace(r.BusinessID)
	r.UserName = strings.TrimSpace(r.UserName)
	r.Comment = strings.TrimSpace(r.Comment)

	if r.BusinessID == "" {
		return ErrBusinessIDRequired
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return ErrInvalidRating
	}
	if r.Comment == "" {
		return ErrCommentRequired
	}
	if r.UserName == "" {
		r.UserName = anonymousReviewer
	}

	photos := r.Photos[:0]
	for _, p := range r.Photos {
		if p = strings.TrimSpace(p); p != "" {
			photos = append(photos, p)
		}
	}
	r.Photos = photos
	return nil
}

// ReviewService handles review persistence and notification
type ReviewService struct {
	db        *bun.DB
	publisher events.Publisher
	logr      *zap.Logger
}

func NewReviewService(db *bun.DB, publisher events.Publisher, logr *zap.Logger) *ReviewService {
	return &ReviewService{db: db, publisher: publisher, logr: logr}
}

// CreateReview validates and stores a review, then publishes a
// review-submitted event. A failed publish is logged and does not fail the call.
func (s *ReviewService) CreateReview(ctx context.Context, req CreateReviewRequest) (*models.Review, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	review := &models.Review{
		ID:         uuid.New(),
		BusinessID: req.BusinessID,
		UserName:   req.UserName,
		UserAvatar: req.UserAvatar,
		Rating:     req.Rating,
		Comment:    req.Comment,
		Photos:     req.Photos,
		CreatedAt:  time.Now().UTC(),
	}

	if _, err := s.db.NewInsert().Model(review).Exec(ctx); err != nil {
		return nil, err
	}

	evt := events.ReviewSubmitted{
		ReviewID:    review.ID.String(),
		BusinessID:  review.BusinessID,
		Rating:      review.Rating,
		SubmittedAt: review.CreatedAt,
	}
	if err := s.publisher.PublishReview(ctx, evt); err != nil {
		s.logr.Warn("failed to publish review event",
			zap.Error(err),
			zap.String("review_id", evt.ReviewID))
	}

	return review, nil
}

// ListByBusiness returns a business's reviews, newest first.
func (s *ReviewService) ListByBusiness(ctx context.Context, businessID string, limit, offset int) ([]models.Review, error) {
	reviews := []models.Review{}
	err := s.db.NewSelect().
		Model(&reviews).
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	return reviews, err
}

// RatingSummary returns the average rating (one decimal) and review count.
func (s *ReviewService) RatingSummary(ctx context.Context, businessID string) (*models.RatingSummary, error) {
	var row struct {
		Average float64 `bun:"average"`
		Count   int     `bun:"count"`
	}
	err := s.db.NewSelect().
		Model((*models.Review)(nil)).
		ColumnExpr("COALESCE(AVG(rating), 0) AS average").
		ColumnExpr("COUNT(*) AS count").
		Where("business_id = ?", businessID).
		Scan(ctx, &row)
	if err != nil {
		return nil, err
	}
	return &models.RatingSummary{
		BusinessID: businessID,
		Average:    RoundRating(row.Average),
		Count:      row.Count,
	}, nil
}

// RoundRating rounds to one decimal place.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}
