package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"campus-directory/internal/models"
	"campus-directory/internal/services"
	"campus-directory/internal/utils"

	"go.uber.org/zap"
)

// ClientIDHeader identifies a caller for "latest request wins" handling;
// SupersededHeader marks a response whose request was replaced by a newer one.
const (
	ClientIDHeader   = "X-Client-ID"
	SupersededHeader = "X-Superseded"
)

type BusinessLister interface {
	Nearby(ctx context.Context, lat, lon float64) []models.NearbyBusiness
	Directory(ctx context.Context, q services.DirectoryQuery) []models.Business
}

type InstitutionLookup interface {
	ByID(id string) (models.Institution, error)
}

type BusinessHandler struct {
	service      BusinessLister
	institutions InstitutionLookup
	guard        *services.SelectionGuard
	logr         *zap.Logger
}

func NewBusinessHandler(svc BusinessLister, institutions InstitutionLookup, guard *services.SelectionGuard, logr *zap.Logger) *BusinessHandler {
	return &BusinessHandler{
		service:      svc,
		institutions: institutions,
		guard:        guard,
		logr:         logr,
	}
}

// GetNearby handles GET /api/businesses?lat=&lng=
func (h *BusinessHandler) GetNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	latStr, lngStr := q.Get("lat"), q.Get("lng")

	if strings.TrimSpace(latStr) == "" || strings.TrimSpace(lngStr) == "" {
		writeError(w, http.StatusBadRequest, "Latitude and longitude are required")
		return
	}
	lat, latOK := parseCoordinate(latStr, 90)
	lng, lngOK := parseCoordinate(lngStr, 180)
	if !latOK || !lngOK {
		h.logr.Warn("invalid coordinates", zap.String("lat", latStr), zap.String("lng", lngStr))
		writeError(w, http.StatusBadRequest, "Invalid latitude or longitude")
		return
	}

	ctx, done := h.guard.Begin(r.Context(), r.Header.Get(ClientIDHeader))
	businesses := h.service.Nearby(ctx, lat, lng)
	if done() {
		h.writeSuperseded(w, r)
		return
	}

	h.logr.Info("nearby businesses fetched",
		zap.Float64("lat", lat),
		zap.Float64("lng", lng),
		zap.Int("count", len(businesses)))

	writeJSON(w, http.StatusOK, businesses)
}

// GetDirectory handles GET /api/directory. The search point is either an
// explicit lat/lng pair or a snapshot institution id.
func (h *BusinessHandler) GetDirectory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := services.DirectoryQuery{}
	if instID := strings.TrimSpace(q.Get("institution")); instID != "" {
		inst, err := h.institutions.ByID(instID)
		if errors.Is(err, services.ErrInstitutionNotFound) {
			writeError(w, http.StatusNotFound, "Institution not found")
			return
		}
		if err != nil {
			h.logr.Error("institution lookup failed", zap.Error(err), zap.String("id", instID))
			writeError(w, http.StatusInternalServerError, "Failed to resolve institution")
			return
		}
		query.Lat, query.Lon, query.Anchor = inst.Lat, inst.Lon, inst.Name
		query.Filters.Institution = inst.ID
	} else {
		latStr, lngStr := q.Get("lat"), q.Get("lng")
		if strings.TrimSpace(latStr) == "" || strings.TrimSpace(lngStr) == "" {
			writeError(w, http.StatusBadRequest, "Latitude and longitude are required")
			return
		}
		lat, latOK := parseCoordinate(latStr, 90)
		lng, lngOK := parseCoordinate(lngStr, 180)
		if !latOK || !lngOK {
			writeError(w, http.StatusBadRequest, "Invalid latitude or longitude")
			return
		}
		query.Lat, query.Lon = lat, lng
	}

	filters, err := parseFilterOptions(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rating")
		return
	}
	filters.Institution = query.Filters.Institution
	query.Filters = filters

	ctx, done := h.guard.Begin(r.Context(), r.Header.Get(ClientIDHeader))
	businesses := h.service.Directory(ctx, query)
	if done() {
		h.writeSuperseded(w, r)
		return
	}

	h.logr.Info("directory listing served",
		zap.Float64("lat", query.Lat),
		zap.Float64("lng", query.Lon),
		zap.String("institution", query.Filters.Institution),
		zap.Int("count", len(businesses)))

	writeJSON(w, http.StatusOK, businesses)
}

func (h *BusinessHandler) writeSuperseded(w http.ResponseWriter, r *http.Request) {
	h.logr.Debug("request superseded by a newer one", zap.String("client_id", r.Header.Get(ClientIDHeader)))
	w.Header().Set(SupersededHeader, "true")
	writeJSON(w, http.StatusOK, []struct{}{})
}

var errInvalidRatingParam = errors.New("rating must be a number between 0 and 5")

func parseFilterOptions(q map[string][]string) (models.FilterOptions, error) {
	get := func(key string) string {
		if v := q[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	opts := models.FilterOptions{
		Category:        utils.ExpandCategoryGroups(utils.ParseQueryList(q, "group"), utils.ParseQueryList(q, "category")),
		PriceRange:      utils.ParseQueryList(q, "priceRange"),
		StudentDiscount: utils.ParseBool(get("studentDiscount")),
		OpenNow:         utils.ParseBool(get("openNow")),
		SearchQuery:     strings.TrimSpace(get("search")),
	}

	if raw := strings.TrimSpace(get("rating")); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil || rating < 0 || rating > services.MaxRating {
			return opts, errInvalidRatingParam
		}
		opts.Rating = rating
	}
	return opts, nil
}
