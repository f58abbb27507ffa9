package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"campus-directory/internal/models"
	"campus-directory/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReviewStore interface {
	CreateReview(ctx context.Context, req services.CreateReviewRequest) (*models.Review, error)
	ListByBusiness(ctx context.Context, businessID string, limit, offset int) ([]models.Review, error)
	RatingSummary(ctx context.Context, businessID string) (*models.RatingSummary, error)
}

// ReviewHandler handles HTTP requests for reviews
type ReviewHandler struct {
	service ReviewStore
	logr    *zap.Logger
}

func NewReviewHandler(svc ReviewStore, logr *zap.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logr: logr}
}

// CreateReview handles POST /api/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req services.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logr.Warn("failed to decode request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	review, err := h.service.CreateReview(r.Context(), req)
	switch {
	case errors.Is(err, services.ErrBusinessIDRequired),
		errors.Is(err, services.ErrInvalidRating),
		errors.Is(err, services.ErrCommentRequired):
		h.logr.Warn("review validation failed", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logr.Error("failed to create review", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to submit review")
		return
	}

	h.logr.Info("review submitted",
		zap.String("business_id", review.BusinessID),
		zap.Int("rating", review.Rating))

	writeJSON(w, http.StatusCreated, review)
}

// ListReviews handles GET /api/businesses/{id}/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	businessID := strings.TrimSpace(chi.URLParam(r, "id"))
	if businessID == "" {
		writeError(w, http.StatusBadRequest, "Business ID is required")
		return
	}
	limit, offset := parsePage(r, 20, 100)

	reviews, err := h.service.ListByBusiness(r.Context(), businessID, limit, offset)
	if err != nil {
		h.logr.Error("failed to fetch reviews", zap.Error(err), zap.String("business_id", businessID))
		writeError(w, http.StatusInternalServerError, "Failed to fetch reviews")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":   reviews,
		"count":  len(reviews),
		"limit":  limit,
		"offset": offset,
	})
}

// GetRating handles GET /api/businesses/{id}/rating
func (h *ReviewHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	businessID := strings.TrimSpace(chi.URLParam(r, "id"))
	if businessID == "" {
		writeError(w, http.StatusBadRequest, "Business ID is required")
		return
	}

	summary, err := h.service.RatingSummary(r.Context(), businessID)
	if err != nil {
		h.logr.Error("failed to compute rating", zap.Error(err), zap.String("business_id", businessID))
		writeError(w, http.StatusInternalServerError, "Failed to fetch rating")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
