package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"campus-directory/internal/config"
	"campus-directory/internal/handlers"
	"campus-directory/internal/logger"
	"campus-directory/internal/models"
	"campus-directory/internal/services"

	"go.uber.org/zap"
)

type stubNearby struct{}

func (stubNearby) Nearby(context.Context, float64, float64) []models.NearbyBusiness {
	return []models.NearbyBusiness{{Name: "Tea Stall", Category: "cafe", PlaceID: "node/5"}}
}

type stubInstitutions struct{}

func (stubInstitutions) Institutions(context.Context, string) []models.Institution {
	return []models.Institution{{ID: "nominatim_1", Name: "Government College of Technology"}}
}

func denyAll(http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
	})
}

func testRouter() http.Handler {
	cfg := &config.Config{AllowedOrigins: []string{"http://localhost:5173"}}
	nop := zap.NewNop()

	institutions := services.NewInstitutionService(stubInstitutions{}, nil, nop)
	h := &Handlers{
		Business:     handlers.NewBusinessHandler(services.NewBusinessService(stubNearby{}, nop), institutions, services.NewSelectionGuard(), nop),
		Institution:  handlers.NewInstitutionHandler(institutions, "Coimbatore", nop),
		Review:       handlers.NewReviewHandler(nil, nop),
		Event:        handlers.NewEventHandler(nil, nop),
		Registration: handlers.NewRegistrationHandler(nil, nop),
		Auth:         handlers.NewAuthHandler(nil, logger.Nop()),
		RequireAuth:  denyAll,
	}
	return NewRouter(cfg, h)
}

func TestRouter_Healthz(t *testing.T) {
	rr := httptest.NewRecorder()
	testRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rr.Code, rr.Body.String())
	}
}

func TestRouter_PublicRoutes(t *testing.T) {
	router := testRouter()

	tests := []struct {
		path     string
		wantCode int
		contains string
	}{
		{"/api/businesses?lat=11.0168&lng=76.9558", http.StatusOK, `"place_id":"node/5"`},
		{"/api/businesses", http.StatusBadRequest, "Latitude and longitude are required"},
		{"/api/directory?lat=11.0168&lng=76.9558", http.StatusOK, `"id":"node/5"`},
		{"/api/institutions?city=Coimbatore", http.StatusOK, "Government College of Technology"},
		{"/api/institutions/inst_1", http.StatusNotFound, "Institution not found"},
		{"/api/events/not-a-uuid", http.StatusBadRequest, "Invalid event ID"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.wantCode, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.contains) {
				t.Errorf("body %q missing %q", rr.Body.String(), tt.contains)
			}
		})
	}
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	router := testRouter()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/events"},
		{http.MethodPost, "/api/registrations"},
		{http.MethodGet, "/api/registrations/mine"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}")))
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rr.Code)
			}
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/businesses", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", handlers.ClientIDHeader)

	rr := httptest.NewRecorder()
	testRouter().ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(strings.ToLower(got), "x-client-id") {
		t.Errorf("allow headers = %q, want X-Client-ID", got)
	}
}
