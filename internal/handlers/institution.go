package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"campus-directory/internal/models"
	"campus-directory/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type InstitutionProvider interface {
	List(ctx context.Context, city, source string) ([]models.Institution, error)
	ByID(id string) (models.Institution, error)
}

type InstitutionHandler struct {
	service     InstitutionProvider
	defaultCity string
	logr        *zap.Logger
}

func NewInstitutionHandler(svc InstitutionProvider, defaultCity string, logr *zap.Logger) *InstitutionHandler {
	return &InstitutionHandler{service: svc, defaultCity: defaultCity, logr: logr}
}

// GetInstitutions handles GET /api/institutions?city=&source=
func (h *InstitutionHandler) GetInstitutions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	city := strings.TrimSpace(q.Get("city"))
	if city == "" {
		city = h.defaultCity
	}
	source := strings.ToLower(strings.TrimSpace(q.Get("source")))

	institutions, err := h.service.List(r.Context(), city, source)
	if err != nil {
		h.logr.Error("error fetching institutions", zap.Error(err), zap.String("city", city))
		writeError(w, http.StatusInternalServerError, "Failed to fetch institutions")
		return
	}

	h.logr.Info("institutions fetched",
		zap.String("city", city),
		zap.String("source", source),
		zap.Int("count", len(institutions)))

	writeJSON(w, http.StatusOK, institutions)
}

// GetInstitution handles GET /api/institutions/{id}
func (h *InstitutionHandler) GetInstitution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	inst, err := h.service.ByID(id)
	if errors.Is(err, services.ErrInstitutionNotFound) {
		writeError(w, http.StatusNotFound, "Institution not found")
		return
	}
	if err != nil {
		h.logr.Error("institution lookup failed", zap.Error(err), zap.String("id", id))
		writeError(w, http.StatusInternalServerError, "Failed to fetch institution")
		return
	}

	writeJSON(w, http.StatusOK, inst)
}
