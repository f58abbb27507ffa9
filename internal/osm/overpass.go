// Package osm holds the OpenStreetMap source adapters: the Overpass POI
// client and the Nominatim institution search. Both normalize upstream JSON
// into the directory's models and never surface upstream failures to the
// caller; a failed fetch is logged and yields an empty slice.
package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	"campus-directory/internal/models"
	"campus-directory/internal/utils"

	"go.uber.org/zap"
)

// MetersPerDegree is the rough degree-to-meter scale used by Distance.
const MetersPerDegree = 111000

// categoryTags are checked in order; the first present one names the category.
var categoryTags = []string{"amenity", "shop", "leisure", "tourism"}

// Element is a single Overpass result element.
type Element struct {
	ID   int64             `json:"id"`
	Type string            `json:"type"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags,omitempty"`
}

// OverpassResponse is the body returned by the Overpass interpreter.
type OverpassResponse struct {
	Elements []Element `json:"elements"`
}

// OverpassClient queries the Overpass interpreter.
type OverpassClient struct {
	baseURL    string
	userAgent  string
	radius     int
	limit      int
	httpClient *http.Client
	logr       *zap.Logger
}

// NewOverpassClient creates an Overpass client. The client sets no timeout
// of its own; callers bound requests through their context.
func NewOverpassClient(baseURL, userAgent string, radius, limit int, logr *zap.Logger) *OverpassClient {
	return &OverpassClient{
		baseURL:    baseURL,
		userAgent:  userAgent,
		radius:     radius,
		limit:      limit,
		httpClient: &http.Client{},
		logr:       logr,
	}
}

// BuildNearbyQuery returns the Overpass QL selecting tagged nodes around a point.
func BuildNearbyQuery(lat, lon float64, radius int) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, tag := range categoryTags {
		fmt.Fprintf(&b, "  node(around:%d,%s,%s)[\"%s\"];\n", radius, formatCoord(lat), formatCoord(lon), tag)
	}
	b.WriteString(");\nout center;\n")
	return b.String()
}

// Nearby fetches POIs around the point and maps them to NearbyBusiness
// records. Any failure is logged and produces an empty slice.
func (c *OverpassClient) Nearby(ctx context.Context, lat, lon float64) []models.NearbyBusiness {
	elements, err := c.Query(ctx, BuildNearbyQuery(lat, lon, c.radius))
	if err != nil {
		c.logr.Error("error fetching from overpass api",
			zap.Float64("lat", lat),
			zap.Float64("lng", lon),
			zap.Error(err))
		return []models.NearbyBusiness{}
	}
	return MapElements(elements, lat, lon, c.limit)
}

// Query runs a raw Overpass QL query and returns its elements.
func (c *OverpassClient) Query(ctx context.Context, query string) ([]Element, error) {
	params := url.Values{}
	params.Set("data", query)
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("overpass api error: %d", resp.StatusCode)
	}

	var body OverpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}
	return body.Elements, nil
}

// MapElements converts Overpass nodes into NearbyBusiness records relative to
// the query point. Unnamed nodes and repeated (name, lat, lon) entries are
// dropped, and at most limit records are returned in upstream order.
func MapElements(elements []Element, lat, lon float64, limit int) []models.NearbyBusiness {
	out := make([]models.NearbyBusiness, 0, len(elements))
	for _, el := range elements {
		if el.Type != "node" || el.Tags == nil {
			continue
		}

		category := Category(el.Tags)
		name := el.Tags["name"]
		if name == "" {
			name = PlaceholderName(category, el.ID)
		}
		if name == PlaceholderName(category, el.ID) {
			continue
		}

		address := el.Tags["addr:full"]
		if address == "" {
			address = el.Tags["addr:street"]
		}

		out = append(out, models.NearbyBusiness{
			Name:     name,
			Category: category,
			OpenNow:  false,
			Rating:   0,
			Address:  address,
			Distance: Distance(el.Lat, el.Lon, lat, lon),
			Lat:      el.Lat,
			Lng:      el.Lon,
			PlaceID:  fmt.Sprintf("osm_%d", el.ID),
		})
	}

	out = utils.DedupeNearby(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Category returns the first present amenity/shop/leisure/tourism value with
// underscores replaced by spaces, or "business".
func Category(tags map[string]string) string {
	for _, key := range categoryTags {
		if v := tags[key]; v != "" {
			return strings.ReplaceAll(v, "_", " ")
		}
	}
	return "business"
}

// PlaceholderName is the display name synthesized for an unnamed element.
func PlaceholderName(category string, id int64) string {
	return fmt.Sprintf("%s (%d)", category, id)
}

// Distance is the planar distance between two points in degrees, scaled to
// meters and rounded. It is not geodesic.
func Distance(lat1, lon1, lat2, lon2 float64) int {
	d := math.Sqrt(math.Pow(lat1-lat2, 2)+math.Pow(lon1-lon2, 2)) * MetersPerDegree
	return int(math.Round(d))
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%g", v)
}
