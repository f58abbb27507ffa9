package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"campus-directory/internal/models"
	"campus-directory/internal/utils"

	"go.uber.org/zap"
)

// CoimbatoreBox is the lat/lon window institutions must fall in when their
// display name does not name the area.
var CoimbatoreBox = utils.BoundingBox{MinLat: 10.5, MaxLat: 11.5, MinLon: 76.5, MaxLon: 77.5}

// institutionKinds are searched in this order, one request each.
var institutionKinds = []string{"college", "university", "school"}

// SearchResult is one Nominatim /search hit.
type SearchResult struct {
	PlaceID     int64  `json:"place_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Class       string `json:"class"`
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
}

type NominatimClient struct {
	baseURL    string
	userAgent  string
	region     string
	box        utils.BoundingBox
	httpClient *http.Client
	logr       *zap.Logger
}

func NewNominatimClient(baseURL, userAgent string, logr *zap.Logger) *NominatimClient {
	return &NominatimClient{
		baseURL:    baseURL,
		userAgent:  userAgent,
		region:     "Tamil Nadu India",
		box:        CoimbatoreBox,
		httpClient: &http.Client{},
		logr:       logr,
	}
}

// Institutions runs the college, university and school searches for city
// sequentially. A failing search is logged and skipped.
func (c *NominatimClient) Institutions(ctx context.Context, city string) []models.Institution {
	var all []SearchResult
	for _, kind := range institutionKinds {
		if ctx.Err() != nil {
			break
		}
		query := fmt.Sprintf("%s %s %s", kind, city, c.region)

		results, err := c.Search(ctx, query)
		if err != nil {
			c.logr.Warn("nominatim query failed", zap.String("query", query), zap.Error(err))
			continue
		}
		c.logr.Debug("nominatim query returned", zap.String("query", query), zap.Int("count", len(results)))

		all = append(all, FilterInArea(results, city, c.box)...)
	}

	unique := DedupeResults(all)
	institutions := make([]models.Institution, 0, len(unique))
	for _, r := range unique {
		institutions = append(institutions, ToInstitution(r))
	}
	return institutions
}

// Search issues a single bounded text search.
func (c *NominatimClient) Search(ctx context.Context, query string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("limit", "20")
	params.Set("bounded", "1")
	params.Set("viewbox", c.box.Viewbox())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
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
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var results []SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}
	return results, nil
}

// FilterInArea keeps hits whose display name mentions the city or Tamil Nadu,
// or whose coordinates fall inside box.
func FilterInArea(results []SearchResult, city string, box utils.BoundingBox) []SearchResult {
	city = strings.ToLower(city)
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		name := strings.ToLower(r.DisplayName)
		if (city != "" && strings.Contains(name, city)) || strings.Contains(name, "tamil nadu") {
			out = append(out, r)
			continue
		}
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr == nil && lonErr == nil && box.Contains(lat, lon) {
			out = append(out, r)
		}
	}
	return out
}

// DedupeResults drops hits sharing a place id or exact coordinates with any
// earlier hit, whether or not that earlier hit was kept.
func DedupeResults(results []SearchResult) []SearchResult {
	seenPlace := make(map[int64]bool, len(results))
	seenCoord := make(map[[2]string]bool, len(results))
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		coord := [2]string{r.Lat, r.Lon}
		dup := seenPlace[r.PlaceID] || seenCoord[coord]
		seenPlace[r.PlaceID] = true
		seenCoord[coord] = true
		if !dup {
			out = append(out, r)
		}
	}
	return out
}

// ToInstitution maps a search hit to an Institution. The type is college when
// the display name mentions a college or university, school otherwise.
func ToInstitution(r SearchResult) models.Institution {
	name := strings.TrimSpace(strings.SplitN(r.DisplayName, ",", 2)[0])
	if name == "" {
		name = r.DisplayName
	}

	typ := models.InstitutionSchool
	lower := strings.ToLower(r.DisplayName)
	if strings.Contains(lower, "college") || strings.Contains(lower, "university") {
		typ = models.InstitutionCollege
	}

	lat, _ := strconv.ParseFloat(r.Lat, 64)
	lon, _ := strconv.ParseFloat(r.Lon, 64)

	return models.Institution{
		ID:      fmt.Sprintf("nominatim_%d", r.PlaceID),
		Name:    name,
		Type:    typ,
		Lat:     lat,
		Lon:     lon,
		Address: r.DisplayName,
	}
}
