package osm

import (
	"strings"
	"testing"

	"campus-directory/internal/models"
)

func TestBuildInstitutionQuery(t *testing.T) {
	q := BuildInstitutionQuery(CoimbatoreBox)
	if !strings.Contains(q, `node["amenity"~"school|college|university"](10.5,76.5,11.5,77.5);`) {
		t.Errorf("missing amenity clause:\n%s", q)
	}
	if !strings.Contains(q, `node["education"~"school|college|university"](10.5,76.5,11.5,77.5);`) {
		t.Errorf("missing education clause:\n%s", q)
	}
}

func TestMapInstitutions(t *testing.T) {
	elements := []Element{
		{ID: 1, Type: "node", Lat: 11.04, Lon: 76.92, Tags: map[string]string{"amenity": "university", "name": "Bharathiar University", "addr:city": "Coimbatore", "addr:postcode": "641046"}},
		{ID: 2, Type: "node", Lat: 11.02, Lon: 77.00, Tags: map[string]string{"amenity": "college", "name": "PSG College of Arts"}},
		{ID: 3, Type: "node", Lat: 11.00, Lon: 76.96, Tags: map[string]string{"education": "school", "name": "Stanes School"}},
		{ID: 4, Type: "node", Lat: 11.00, Lon: 76.96, Tags: map[string]string{"amenity": "school"}},
		{ID: 5, Type: "node", Lat: 11.04, Lon: 76.92, Tags: map[string]string{"amenity": "university", "name": "Bharathiar University"}},
	}

	got := MapInstitutions(elements)
	if len(got) != 3 {
		t.Fatalf("len = %d; want 3 (%+v)", len(got), got)
	}

	want := []struct {
		id  string
		typ models.InstitutionType
	}{
		{"inst_1", models.InstitutionUniversity},
		{"inst_2", models.InstitutionCollege},
		{"inst_3", models.InstitutionSchool},
	}
	for i, w := range want {
		if got[i].ID != w.id || got[i].Type != w.typ {
			t.Errorf("got[%d] = %+v; want id=%s type=%s", i, got[i], w.id, w.typ)
		}
	}
	if got[0].Address != "Coimbatore, 641046" {
		t.Errorf("Address = %q", got[0].Address)
	}
}

func TestSnapshotInstitutions_ClipsToBox(t *testing.T) {
	elements := []Element{
		{ID: 1, Type: "node", Lat: 11.04, Lon: 76.92, Tags: map[string]string{"amenity": "university", "name": "Bharathiar University"}},
		{ID: 2, Type: "node", Lat: 13.01, Lon: 80.23, Tags: map[string]string{"amenity": "university", "name": "Anna University"}},
	}

	got := SnapshotInstitutions(elements, CoimbatoreBox)
	if len(got) != 1 || got[0].ID != "inst_1" {
		t.Fatalf("SnapshotInstitutions = %+v; want only inst_1", got)
	}
}
