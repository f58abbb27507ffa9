package services

import (
	"context"
	"strings"
	"testing"

	"campus-directory/internal/models"

	"go.uber.org/zap"
)

type fakeNearby struct {
	result []models.NearbyBusiness
	calls  int
}

func (f *fakeNearby) Nearby(context.Context, float64, float64) []models.NearbyBusiness {
	f.calls++
	return f.result
}

func TestToBusiness(t *testing.T) {
	nb := models.NearbyBusiness{
		Name: "Blue Cup", Category: "cafe", Rating: 4.5, Address: "Avinashi Road",
		Distance: 586, Lat: 11.02, Lng: 76.96, PlaceID: "osm_1",
	}

	b := ToBusiness(nb, "")
	if b.ID != "osm_1" || b.Name != "Blue Cup" || b.Category != "cafe" {
		t.Errorf("identity fields = %+v", b)
	}
	if b.Description != "cafe business" {
		t.Errorf("Description = %q", b.Description)
	}
	if b.PriceRange != models.PriceBudget || b.ReviewCount != 0 || b.Rating != 4.5 {
		t.Errorf("defaults = %+v", b)
	}
	if b.Hours == nil || len(b.Hours) != 0 || b.Amenities == nil || len(b.Amenities) != 0 {
		t.Errorf("hours/amenities must be empty, non-nil: %+v", b)
	}
	if b.NearbyInstitutions == nil || len(b.NearbyInstitutions) != 0 {
		t.Errorf("NearbyInstitutions = %#v", b.NearbyInstitutions)
	}
	if b.Latitude != 11.02 || b.Longitude != 76.96 || b.Address != "Avinashi Road" {
		t.Errorf("location = %+v", b)
	}
	if b.StudentDiscount || b.Phone != "" || b.Email != "" || b.SocialMedia != nil {
		t.Errorf("contact fields should be empty: %+v", b)
	}
}

func TestToBusiness_FallbackIDAndAnchor(t *testing.T) {
	a := ToBusiness(models.NearbyBusiness{Name: "No Id", Category: "shop"}, "PSG College of Technology")
	b := ToBusiness(models.NearbyBusiness{Name: "No Id", Category: "shop"}, "")

	if !strings.HasPrefix(a.ID, "business_") || !strings.HasPrefix(b.ID, "business_") {
		t.Fatalf("fallback ids = %q, %q", a.ID, b.ID)
	}
	if a.ID == b.ID {
		t.Errorf("fallback ids collide: %q", a.ID)
	}
	if len(a.NearbyInstitutions) != 1 || a.NearbyInstitutions[0] != "PSG College of Technology" {
		t.Errorf("NearbyInstitutions = %v", a.NearbyInstitutions)
	}
}

func TestBusinessService_Directory(t *testing.T) {
	src := &fakeNearby{result: []models.NearbyBusiness{
		{Name: "Blue Cup", Category: "cafe", PlaceID: "osm_1"},
		{Name: "Xerox Point", Category: "copyshop", PlaceID: "osm_2"},
		{Name: "Cup and Saucer", Category: "restaurant", PlaceID: "osm_3"},
	}}
	svc := NewBusinessService(src, zap.NewNop())

	got := svc.Directory(context.Background(), DirectoryQuery{
		Lat: 11, Lon: 76.9, Anchor: "PSG Tech",
		Filters: models.FilterOptions{SearchQuery: "cup", Category: []string{"cafe", "restaurant"}},
	})
	if len(got) != 2 || got[0].ID != "osm_1" || got[1].ID != "osm_3" {
		t.Fatalf("Directory = %+v", got)
	}
	if got[0].NearbyInstitutions[0] != "PSG Tech" {
		t.Errorf("anchor not applied: %v", got[0].NearbyInstitutions)
	}

	if n := svc.Nearby(context.Background(), 11, 76.9); len(n) != 3 || src.calls != 2 {
		t.Errorf("Nearby = %d results after %d calls", len(n), src.calls)
	}
}

func TestBusinessService_DirectoryEmptyUpstream(t *testing.T) {
	svc := NewBusinessService(&fakeNearby{result: []models.NearbyBusiness{}}, zap.NewNop())
	got := svc.Directory(context.Background(), DirectoryQuery{Lat: 11, Lon: 76.9})
	if got == nil || len(got) != 0 {
		t.Fatalf("Directory = %#v; want empty non-nil", got)
	}
}
