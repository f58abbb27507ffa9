package utils

import (
	"fmt"
	"strings"

	"campus-directory/internal/models"
)

// BoundingBox is an inclusive lat/lon window.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Viewbox renders the box in Nominatim's left,top,right,bottom order.
func (b BoundingBox) Viewbox() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.MinLon, b.MaxLat, b.MaxLon, b.MinLat)
}

type placeKey struct {
	name     string
	lat, lon float64
}

// DedupeInstitutions keeps the first institution for each (name, lat, lon).
// Running it on its own output returns the same slice contents.
func DedupeInstitutions(in []models.Institution) []models.Institution {
	seen := make(map[placeKey]bool, len(in))
	out := make([]models.Institution, 0, len(in))
	for _, inst := range in {
		key := placeKey{inst.Name, inst.Lat, inst.Lon}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, inst)
	}
	return out
}

// DedupeNearby keeps the first POI for each (name, lat, lng).
func DedupeNearby(in []models.NearbyBusiness) []models.NearbyBusiness {
	seen := make(map[placeKey]bool, len(in))
	out := make([]models.NearbyBusiness, 0, len(in))
	for _, nb := range in {
		key := placeKey{nb.Name, nb.Lat, nb.Lng}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, nb)
	}
	return out
}

// FilterInBox keeps institutions located inside box.
func FilterInBox(in []models.Institution, box BoundingBox) []models.Institution {
	out := make([]models.Institution, 0, len(in))
	for _, inst := range in {
		if box.Contains(inst.Lat, inst.Lon) {
			out = append(out, inst)
		}
	}
	return out
}

// NameContains reports whether name contains query, ignoring case. An empty
// query matches everything.
func NameContains(name, query string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(query))
}
