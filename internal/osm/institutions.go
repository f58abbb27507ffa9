package osm

import (
	"fmt"
	"strings"

	"campus-directory/internal/models"
	"campus-directory/internal/utils"
)

// BuildInstitutionQuery selects school, college and university nodes inside box.
func BuildInstitutionQuery(box utils.BoundingBox) string {
	bbox := fmt.Sprintf("%g,%g,%g,%g", box.MinLat, box.MinLon, box.MaxLat, box.MaxLon)
	return "[out:json][timeout:25];\n(\n" +
		"  node[\"amenity\"~\"school|college|university\"](" + bbox + ");\n" +
		"  node[\"education\"~\"school|college|university\"](" + bbox + ");\n" +
		");\nout;\n"
}

// MapInstitutions turns named Overpass nodes into deduplicated Institution
// records for the offline snapshot.
func MapInstitutions(elements []Element) []models.Institution {
	out := make([]models.Institution, 0, len(elements))
	for _, el := range elements {
		if el.Type != "node" || el.Tags == nil || el.Tags["name"] == "" {
			continue
		}
		if el.Lat == 0 || el.Lon == 0 {
			continue
		}
		out = append(out, models.Institution{
			ID:      fmt.Sprintf("inst_%d", el.ID),
			Name:    el.Tags["name"],
			Type:    institutionType(el.Tags),
			Lat:     el.Lat,
			Lon:     el.Lon,
			Address: institutionAddress(el.Tags),
		})
	}
	return utils.DedupeInstitutions(out)
}

// SnapshotInstitutions maps elements and keeps only institutions inside box.
func SnapshotInstitutions(elements []Element, box utils.BoundingBox) []models.Institution {
	return utils.FilterInBox(MapInstitutions(elements), box)
}

func institutionType(tags map[string]string) models.InstitutionType {
	kind := tags["amenity"]
	if kind == "" {
		kind = tags["education"]
	}
	switch {
	case strings.Contains(kind, "university"):
		return models.InstitutionUniversity
	case strings.Contains(kind, "college"):
		return models.InstitutionCollege
	default:
		return models.InstitutionSchool
	}
}

func institutionAddress(tags map[string]string) string {
	var parts []string
	for _, key := range []string{"addr:street", "addr:city", "addr:postcode"} {
		if v := tags[key]; v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
