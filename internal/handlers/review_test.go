package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"campus-directory/internal/models"
	"campus-directory/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeReviews struct {
	createErr  error
	listed     []models.Review
	gotLimit   int
	gotOffset  int
	gotID      string
	summary    *models.RatingSummary
	summaryErr error
}

func (f *fakeReviews) CreateReview(_ context.Context, req services.CreateReviewRequest) (*models.Review, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	return &models.Review{
		ID:         uuid.New(),
		BusinessID: req.BusinessID,
		UserName:   req.UserName,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}, nil
}

func (f *fakeReviews) ListByBusiness(_ context.Context, businessID string, limit, offset int) ([]models.Review, error) {
	f.gotID, f.gotLimit, f.gotOffset = businessID, limit, offset
	return f.listed, nil
}

func (f *fakeReviews) RatingSummary(_ context.Context, businessID string) (*models.RatingSummary, error) {
	f.gotID = businessID
	return f.summary, f.summaryErr
}

func reviewRouter(h *ReviewHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/reviews", h.CreateReview)
	r.Get("/api/businesses/{id}/reviews", h.ListReviews)
	r.Get("/api/businesses/{id}/rating", h.GetRating)
	return r
}

func TestReviewHandler_CreateReview(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		svc      *fakeReviews
		wantCode int
		wantMsg  string
	}{
		{
			name:     "valid",
			body:     `{"businessId":"node/1","rating":5,"comment":"Great filter coffee"}`,
			svc:      &fakeReviews{},
			wantCode: http.StatusCreated,
		},
		{
			name:     "malformed json",
			body:     `{"businessId":`,
			svc:      &fakeReviews{},
			wantCode: http.StatusBadRequest, wantMsg: "Invalid request body",
		},
		{
			name:     "rating out of range",
			body:     `{"businessId":"node/1","rating":6,"comment":"ok"}`,
			svc:      &fakeReviews{},
			wantCode: http.StatusBadRequest, wantMsg: services.ErrInvalidRating.Error(),
		},
		{
			name:     "missing comment",
			body:     `{"businessId":"node/1","rating":3,"comment":"  "}`,
			svc:      &fakeReviews{},
			wantCode: http.StatusBadRequest, wantMsg: services.ErrCommentRequired.Error(),
		},
		{
			name:     "store failure",
			body:     `{"businessId":"node/1","rating":3,"comment":"fine"}`,
			svc:      &fakeReviews{createErr: errors.New("connection refused")},
			wantCode: http.StatusInternalServerError, wantMsg: "Failed to submit review",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewReviewHandler(tt.svc, zap.NewNop())
			req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			reviewRouter(h).ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.wantCode, rr.Body.String())
			}
			if tt.wantMsg != "" {
				if got := decodeError(t, rr); got != tt.wantMsg {
					t.Errorf("error = %q, want %q", got, tt.wantMsg)
				}
				return
			}
			var review models.Review
			if err := json.NewDecoder(rr.Body).Decode(&review); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if review.UserName != "Anonymous" || review.BusinessID != "node/1" {
				t.Errorf("review = %+v", review)
			}
		})
	}
}

func TestReviewHandler_ListReviews(t *testing.T) {
	svc := &fakeReviews{listed: []models.Review{{BusinessID: "node/1", Rating: 4}}}
	h := NewReviewHandler(svc, zap.NewNop())

	rr := httptest.NewRecorder()
	reviewRouter(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/businesses/node1/reviews?limit=500&offset=10", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if svc.gotID != "node1" || svc.gotLimit != 100 || svc.gotOffset != 10 {
		t.Errorf("service called with (%q, %d, %d)", svc.gotID, svc.gotLimit, svc.gotOffset)
	}
	var body struct {
		Data  []models.Review `json:"data"`
		Count int             `json:"count"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 || len(body.Data) != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestReviewHandler_GetRating(t *testing.T) {
	svc := &fakeReviews{summary: &models.RatingSummary{BusinessID: "node1", Average: 4.3, Count: 7}}
	h := NewReviewHandler(svc, zap.NewNop())

	rr := httptest.NewRecorder()
	reviewRouter(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/businesses/node1/rating", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var got models.RatingSummary
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Average != 4.3 || got.Count != 7 {
		t.Errorf("summary = %+v", got)
	}

	svc.summaryErr = errors.New("timeout")
	rr = httptest.NewRecorder()
	reviewRouter(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/businesses/node1/rating", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}
