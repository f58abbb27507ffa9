package osm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"campus-directory/internal/models"

	"go.uber.org/zap"
)

func TestFilterInArea(t *testing.T) {
	results := []SearchResult{
		{PlaceID: 1, Lat: "11.02", Lon: "76.94", DisplayName: "PSG College of Technology, Peelamedu, Coimbatore"},
		{PlaceID: 2, Lat: "13.08", Lon: "80.27", DisplayName: "Some School, Chennai, Tamil Nadu, India"},
		{PlaceID: 3, Lat: "11.10", Lon: "77.00", DisplayName: "Unnamed campus"},
		{PlaceID: 4, Lat: "12.97", Lon: "77.59", DisplayName: "Bangalore University, Karnataka"},
		{PlaceID: 5, Lat: "bad", Lon: "77.00", DisplayName: "Broken coordinates"},
	}

	got := FilterInArea(results, "Coimbatore", CoimbatoreBox)
	var ids []int64
	for _, r := range got {
		ids = append(ids, r.PlaceID)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("kept ids = %v; want [1 2 3]", ids)
	}
}

func TestDedupeResults(t *testing.T) {
	results := []SearchResult{
		{PlaceID: 1, Lat: "11.0", Lon: "76.9", DisplayName: "A"},
		{PlaceID: 1, Lat: "11.5", Lon: "76.5", DisplayName: "A again"},
		{PlaceID: 2, Lat: "11.0", Lon: "76.9", DisplayName: "Same spot"},
		{PlaceID: 3, Lat: "11.1", Lon: "76.9", DisplayName: "B"},
	}

	got := DedupeResults(results)
	if len(got) != 2 || got[0].DisplayName != "A" || got[1].DisplayName != "B" {
		t.Fatalf("DedupeResults = %+v", got)
	}

	again := DedupeResults(got)
	if len(again) != len(got) {
		t.Fatalf("dedupe not idempotent: %d then %d", len(got), len(again))
	}
}

func TestDedupeResults_DroppedHitsStillCount(t *testing.T) {
	results := []SearchResult{
		{PlaceID: 1, Lat: "11.0", Lon: "76.9", DisplayName: "A"},
		{PlaceID: 1, Lat: "11.2", Lon: "77.1", DisplayName: "A elsewhere"},
		{PlaceID: 3, Lat: "11.2", Lon: "77.1", DisplayName: "C at A's second spot"},
	}

	got := DedupeResults(results)
	if len(got) != 1 || got[0].DisplayName != "A" {
		t.Fatalf("DedupeResults = %+v; want only A", got)
	}
}

func TestToInstitution(t *testing.T) {
	cases := []struct {
		name     string
		in       SearchResult
		wantName string
		wantType models.InstitutionType
	}{
		{
			name:     "college by display name",
			in:       SearchResult{PlaceID: 10, Lat: "11.0247", Lon: "77.0028", DisplayName: "PSG College of Technology, Avinashi Road, Coimbatore"},
			wantName: "PSG College of Technology",
			wantType: models.InstitutionCollege,
		},
		{
			name:     "university counts as college",
			in:       SearchResult{PlaceID: 11, Lat: "11.04", Lon: "76.92", DisplayName: "Bharathiar University, Maruthamalai Road"},
			wantName: "Bharathiar University",
			wantType: models.InstitutionCollege,
		},
		{
			name:     "school otherwise",
			in:       SearchResult{PlaceID: 12, Lat: "11.00", Lon: "76.96", DisplayName: "Stanes Anglo Indian Higher Secondary, Coimbatore"},
			wantName: "Stanes Anglo Indian Higher Secondary",
			wantType: models.InstitutionSchool,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToInstitution(tc.in)
			if got.Name != tc.wantName {
				t.Errorf("Name = %q; want %q", got.Name, tc.wantName)
			}
			if got.Type != tc.wantType {
				t.Errorf("Type = %q; want %q", got.Type, tc.wantType)
			}
			if got.Address != tc.in.DisplayName {
				t.Errorf("Address = %q", got.Address)
			}
			if !strings.HasPrefix(got.ID, "nominatim_") {
				t.Errorf("ID = %q", got.ID)
			}
		})
	}
}

func TestNominatimClient_Institutions(t *testing.T) {
	var mu sync.Mutex
	var queries []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mu.Lock()
		queries = append(queries, q.Get("q"))
		mu.Unlock()

		if q.Get("viewbox") != "76.5,11.5,77.5,10.5" || q.Get("bounded") != "1" || q.Get("limit") != "20" {
			t.Errorf("unexpected params: %v", q)
		}

		switch {
		case strings.HasPrefix(q.Get("q"), "college"):
			_ = json.NewEncoder(w).Encode([]SearchResult{
				{PlaceID: 1, Lat: "11.0247", Lon: "77.0028", DisplayName: "PSG College of Technology, Coimbatore"},
			})
		case strings.HasPrefix(q.Get("q"), "university"):
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		default:
			_ = json.NewEncoder(w).Encode([]SearchResult{
				{PlaceID: 1, Lat: "11.0247", Lon: "77.0028", DisplayName: "PSG College of Technology, Coimbatore"},
				{PlaceID: 2, Lat: "11.0000", Lon: "76.9600", DisplayName: "Stanes School, Coimbatore"},
			})
		}
	}))
	defer srv.Close()

	c := NewNominatimClient(srv.URL, "test-agent", zap.NewNop())
	got := c.Institutions(context.Background(), "Coimbatore")

	if len(queries) != 3 {
		t.Fatalf("issued %d queries; want 3", len(queries))
	}
	wantOrder := []string{"college", "university", "school"}
	for i, q := range queries {
		if !strings.HasPrefix(q, wantOrder[i]+" Coimbatore Tamil Nadu India") {
			t.Errorf("query %d = %q", i, q)
		}
	}

	if len(got) != 2 {
		t.Fatalf("Institutions = %+v; want 2 unique", got)
	}
	if got[0].Type != models.InstitutionCollege || got[1].Type != models.InstitutionSchool {
		t.Errorf("types = %s, %s", got[0].Type, got[1].Type)
	}
}

func TestNominatimClient_AllQueriesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewNominatimClient(srv.URL, "test-agent", zap.NewNop())
	if got := c.Institutions(context.Background(), "Coimbatore"); len(got) != 0 {
		t.Fatalf("Institutions = %+v; want empty", got)
	}
}
