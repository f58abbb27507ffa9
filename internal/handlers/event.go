package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"campus-directory/internal/models"
	"campus-directory/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventStore interface {
	List(ctx context.Context, q services.EventQuery) ([]models.Event, error)
	ByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	Create(ctx context.Context, creator uuid.UUID, req services.CreateEventRequest) (*models.Event, error)
}

type EventHandler struct {
	service EventStore
	logr    *zap.Logger
	now     func() time.Time
}

func NewEventHandler(svc EventStore, logr *zap.Logger) *EventHandler {
	return &EventHandler{service: svc, logr: logr, now: time.Now}
}

// ListEvents handles GET /api/events?upcoming=&limit=&offset=
// upcoming defaults to true.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	upcoming := true
	if raw := r.URL.Query().Get("upcoming"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid upcoming flag")
			return
		}
		upcoming = v
	}
	limit, offset := parsePage(r, 100, 100)

	evts, err := h.service.List(r.Context(), services.EventQuery{
		Upcoming: upcoming,
		Now:      h.now().UTC(),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		h.logr.Error("failed to fetch events", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch events")
		return
	}

	writeJSON(w, http.StatusOK, evts)
}

// GetEvent handles GET /api/events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	evt, err := h.service.ByID(r.Context(), id)
	if errors.Is(err, services.ErrEventNotFound) {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		h.logr.Error("failed to fetch event", zap.Error(err), zap.String("id", idStr))
		writeError(w, http.StatusInternalServerError, "Failed to fetch event")
		return
	}

	writeJSON(w, http.StatusOK, evt)
}

// CreateEvent handles POST /api/events (authenticated)
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req services.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	evt, err := h.service.Create(r.Context(), userID, req)
	switch {
	case errors.Is(err, services.ErrEventTitleRequired),
		errors.Is(err, services.ErrEventLocationNeeded),
		errors.Is(err, services.ErrEventStartRequired),
		errors.Is(err, services.ErrEventEndBeforeStart),
		errors.Is(err, services.ErrInvalidMaxAttendees):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logr.Error("failed to create event", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	h.logr.Info("event created", zap.String("id", evt.ID.String()), zap.String("user_id", userID.String()))
	writeJSON(w, http.StatusCreated, evt)
}
