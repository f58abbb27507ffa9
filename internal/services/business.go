package services

import (
	"context"
	"fmt"

	"campus-directory/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NearbySource returns POIs around a point. It never fails: upstream errors
// yield an empty slice.
type NearbySource interface {
	Nearby(ctx context.Context, lat, lon float64) []models.NearbyBusiness
}

// BusinessService builds directory listings from live POI data.
type BusinessService struct {
	source NearbySource
	logr   *zap.Logger
}

func NewBusinessService(source NearbySource, logr *zap.Logger) *BusinessService {
	return &BusinessService{source: source, logr: logr}
}

// Nearby returns the raw nearby POIs for the point.
func (s *BusinessService) Nearby(ctx context.Context, lat, lon float64) []models.NearbyBusiness {
	return s.source.Nearby(ctx, lat, lon)
}

// DirectoryQuery describes a filtered listing request. Anchor is the
// institution name the search is centred on, if any.
type DirectoryQuery struct {
	Lat     float64
	Lon     float64
	Anchor  string
	Filters models.FilterOptions
}

// Directory fetches POIs around the query point, converts them to Business
// listings and applies the filter engine.
func (s *BusinessService) Directory(ctx context.Context, q DirectoryQuery) []models.Business {
	nearby := s.source.Nearby(ctx, q.Lat, q.Lon)

	businesses := make([]models.Business, 0, len(nearby))
	for _, nb := range nearby {
		businesses = append(businesses, ToBusiness(nb, q.Anchor))
	}

	filtered := FilterBusinesses(businesses, q.Filters, q.Filters.SearchQuery)
	s.logr.Debug("directory listing built",
		zap.Int("fetched", len(businesses)),
		zap.Int("returned", len(filtered)),
		zap.String("anchor", q.Anchor))
	return filtered
}

// ToBusiness converts a NearbyBusiness into a Business listing, defaulting
// the fields POI data does not carry. anchor, when set, becomes the only
// nearby institution.
func ToBusiness(nb models.NearbyBusiness, anchor string) models.Business {
	id := nb.PlaceID
	if id == "" {
		id = "business_" + uuid.NewString()
	}

	institutions := []string{}
	if anchor != "" {
		institutions = []string{anchor}
	}

	return models.Business{
		ID:                 id,
		Name:               nb.Name,
		Category:           nb.Category,
		Description:        fmt.Sprintf("%s business", nb.Category),
		Address:            nb.Address,
		Rating:             nb.Rating,
		ReviewCount:        0,
		PriceRange:         models.PriceBudget,
		Hours:              map[string]string{},
		Amenities:          []string{},
		StudentDiscount:    false,
		Latitude:           nb.Lat,
		Longitude:          nb.Lng,
		NearbyInstitutions: institutions,
	}
}
