package services

import (
	"context"
	"errors"
	"sync"

	"campus-directory/internal/models"
	"campus-directory/internal/storage"

	"go.uber.org/zap"
)

var ErrInstitutionNotFound = errors.New("institution not found")

// InstitutionSource searches institutions in a city. Failures are absorbed
// by the source and show up as fewer (or no) results.
type InstitutionSource interface {
	Institutions(ctx context.Context, city string) []models.Institution
}

// Source selectors accepted by InstitutionService.List.
const (
	SourceLive     = "live"
	SourceSnapshot = "snapshot"
)

// InstitutionService serves institutions from live Nominatim search, backed
// by the offline snapshot.
type InstitutionService struct {
	live  InstitutionSource
	store storage.SnapshotStore
	logr  *zap.Logger

	mu       sync.RWMutex
	snapshot []models.Institution
	byID     map[string]models.Institution
}

func NewInstitutionService(live InstitutionSource, store storage.SnapshotStore, logr *zap.Logger) *InstitutionService {
	return &InstitutionService{
		live:     live,
		store:    store,
		logr:     logr,
		snapshot: []models.Institution{},
		byID:     map[string]models.Institution{},
	}
}

// LoadSnapshot replaces the in-memory snapshot from the store. A missing
// snapshot leaves it empty and is not an error.
func (s *InstitutionService) LoadSnapshot(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	institutions, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			s.logr.Warn("institution snapshot not found, continuing without it")
			return nil
		}
		return err
	}
	s.SetSnapshot(institutions)
	s.logr.Info("institution snapshot loaded", zap.Int("count", len(institutions)))
	return nil
}

// SetSnapshot installs institutions as the snapshot.
func (s *InstitutionService) SetSnapshot(institutions []models.Institution) {
	byID := make(map[string]models.Institution, len(institutions))
	for _, inst := range institutions {
		byID[inst.ID] = inst
	}
	s.mu.Lock()
	s.snapshot = append([]models.Institution{}, institutions...)
	s.byID = byID
	s.mu.Unlock()
}

// Snapshot returns a copy of the snapshot.
func (s *InstitutionService) Snapshot() []models.Institution {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Institution{}, s.snapshot...)
}

// List returns institutions for city. With source "snapshot" the snapshot is
// returned directly; otherwise a live search runs and an empty live result
// falls back to the snapshot. The only error is a cancelled context.
func (s *InstitutionService) List(ctx context.Context, city, source string) ([]models.Institution, error) {
	if source == SourceSnapshot {
		return s.Snapshot(), nil
	}

	live := s.live.Institutions(ctx, city)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(live) > 0 {
		return live, nil
	}

	fallback := s.Snapshot()
	if len(fallback) > 0 {
		s.logr.Info("live institution search empty, serving snapshot",
			zap.String("city", city),
			zap.Int("count", len(fallback)))
	}
	return fallback, nil
}

// ByID looks an institution up in the snapshot.
func (s *InstitutionService) ByID(id string) (models.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.byID[id]
	if !ok {
		return models.Institution{}, ErrInstitutionNotFound
	}
	return inst, nil
}
