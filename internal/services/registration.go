package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"campus-directory/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrRegistrationNameRequired     = errors.New("name is required")
	ErrRegistrationCategoryRequired = errors.New("category is required")
	ErrRegistrationAddressRequired  = errors.New("address is required")
	ErrInvalidCoordinates           = errors.New("latitude and longitude must be valid coordinates")
	ErrInvalidPriceRange            = errors.New("priceRange must be one of ₹, ₹₹, ₹₹₹, ₹₹₹₹")
)

type CreateRegistrationRequest struct {
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Description     string   `json:"description"`
	Address         string   `json:"address"`
	Phone           string   `json:"phone"`
	Email           string   `json:"email"`
	Website         string   `json:"website"`
	PriceRange      string   `json:"priceRange"`
	OperatingHours  string   `json:"operatingHours"`
	StudentDiscount bool     `json:"studentDiscount"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
}

func (r *CreateRegistrationRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Category = strings.TrimSpace(r.Category)
	r.Address = strings.TrimSpace(r.Address)
	r.PriceRange = strings.TrimSpace(r.PriceRange)

	if r.Name == "" {
		return ErrRegistrationNameRequired
	}
	if r.Category == "" {
		return ErrRegistrationCategoryRequired
	}
	if r.Address == "" {
		return ErrRegistrationAddressRequired
	}
	if r.Latitude == nil || r.Longitude == nil ||
		*r.Latitude < -90 || *r.Latitude > 90 ||
		*r.Longitude < -180 || *r.Longitude > 180 {
		return ErrInvalidCoordinates
	}
	if r.PriceRange != "" && !validPriceRange(r.PriceRange) {
		return ErrInvalidPriceRange
	}
	return nil
}

func validPriceRange(v string) bool {
	for _, p := range models.ValidPriceRanges {
		if p == v {
			return true
		}
	}
	return false
}

// RegistrationService stores business self-registrations for later review.
// Nothing here publishes into the live directory.
type RegistrationService struct {
	db *bun.DB
}

func NewRegistrationService(db *bun.DB) *RegistrationService {
	return &RegistrationService{db: db}
}

func (s *RegistrationService) Create(ctx context.Context, owner uuid.UUID, req CreateRegistrationRequest) (*models.BusinessRegistration, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	reg := &models.BusinessRegistration{
		ID:              uuid.New(),
		OwnerID:         owner,
		Name:            req.Name,
		Category:        req.Category,
		Description:     req.Description,
		Address:         req.Address,
		Phone:           req.Phone,
		Email:           req.Email,
		Website:         req.Website,
		PriceRange:      req.PriceRange,
		OperatingHours:  req.OperatingHours,
		StudentDiscount: req.StudentDiscount,
		Latitude:        *req.Latitude,
		Longitude:       *req.Longitude,
		Status:          models.RegistrationPending,
		CreatedAt:       time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(reg).Exec(ctx); err != nil {
		return nil, err
	}
	return reg, nil
}

// ListByOwner returns owner's registrations, newest first.
func (s *RegistrationService) ListByOwner(ctx context.Context, owner uuid.UUID) ([]models.BusinessRegistration, error) {
	regs := []models.BusinessRegistration{}
	err := s.db.NewSelect().
		Model(&regs).
		Where("owner_id = ?", owner).
		Order("created_at DESC").
		Scan(ctx)
	return regs, err
}
