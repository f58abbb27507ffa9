package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"campus-directory/internal/models"
	"campus-directory/internal/services"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RegistrationStore interface {
	Create(ctx context.Context, owner uuid.UUID, req services.CreateRegistrationRequest) (*models.BusinessRegistration, error)
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]models.BusinessRegistration, error)
}

type RegistrationHandler struct {
	service RegistrationStore
	logr    *zap.Logger
}

func NewRegistrationHandler(svc RegistrationStore, logr *zap.Logger) *RegistrationHandler {
	return &RegistrationHandler{service: svc, logr: logr}
}

// CreateRegistration handles POST /api/registrations (authenticated)
func (h *RegistrationHandler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req services.CreateRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reg, err := h.service.Create(r.Context(), owner, req)
	switch {
	case errors.Is(err, services.ErrRegistrationNameRequired),
		errors.Is(err, services.ErrRegistrationCategoryRequired),
		errors.Is(err, services.ErrRegistrationAddressRequired),
		errors.Is(err, services.ErrInvalidCoordinates),
		errors.Is(err, services.ErrInvalidPriceRange):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logr.Error("failed to store registration", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to submit registration")
		return
	}

	h.logr.Info("business registration received",
		zap.String("id", reg.ID.String()),
		zap.String("owner_id", owner.String()),
		zap.String("category", reg.Category))

	writeJSON(w, http.StatusCreated, reg)
}

// ListMine handles GET /api/registrations/mine (authenticated)
func (h *RegistrationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	regs, err := h.service.ListByOwner(r.Context(), owner)
	if err != nil {
		h.logr.Error("failed to fetch registrations", zap.Error(err), zap.String("owner_id", owner.String()))
		writeError(w, http.StatusInternalServerError, "Failed to fetch registrations")
		return
	}

	writeJSON(w, http.StatusOK, regs)
}
