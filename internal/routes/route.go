package routes

import (
	"net/http"

	"campus-directory/internal/auth"
	"campus-directory/internal/config"
	"campus-directory/internal/events"
	"campus-directory/internal/handlers"
	"campus-directory/internal/logger"
	mdlwr "campus-directory/internal/middleware"
	"campus-directory/internal/osm"
	"campus-directory/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/uptrace/bun"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Business     *handlers.BusinessHandler
	Institution  *handlers.InstitutionHandler
	Review       *handlers.ReviewHandler
	Event        *handlers.EventHandler
	Registration *handlers.RegistrationHandler
	Auth         *handlers.AuthHandler

	// RequireAuth guards the authenticated routes.
	RequireAuth func(http.Handler) http.Handler
}

// NewHandlers wires services and handlers. institutions must already have
// its snapshot loaded.
func NewHandlers(
	db *bun.DB,
	cfg *config.Config,
	logr *logger.Logger,
	jwtMgr *auth.JWTManager,
	institutions *services.InstitutionService,
	publisher events.Publisher,
) *Handlers {
	overpass := osm.NewOverpassClient(cfg.OverpassURL, cfg.GeoUserAgent, cfg.SearchRadius, cfg.MaxResults, logr.Logger)

	businessSvc := services.NewBusinessService(overpass, logr.Logger)
	reviewSvc := services.NewReviewService(db, publisher, logr.Logger)
	eventSvc := services.NewEventService(db)
	registrationSvc := services.NewRegistrationService(db)
	authSvc := services.NewAuthService(db, jwtMgr, cfg, logr)

	authMW := mdlwr.NewAuthMiddleware(jwtMgr, authSvc, logr.Logger)

	return &Handlers{
		Business:     handlers.NewBusinessHandler(businessSvc, institutions, services.NewSelectionGuard(), logr.Logger),
		Institution:  handlers.NewInstitutionHandler(institutions, cfg.DefaultCity, logr.Logger),
		Review:       handlers.NewReviewHandler(reviewSvc, logr.Logger),
		Event:        handlers.NewEventHandler(eventSvc, logr.Logger),
		Registration: handlers.NewRegistrationHandler(registrationSvc, logr.Logger),
		Auth:         handlers.NewAuthHandler(authSvc, logr),
		RequireAuth:  authMW.JWTAuth,
	}
}

func NewRouter(cfg *config.Config, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", handlers.ClientIDHeader},
		ExposedHeaders:   []string{"Link", handlers.SupersededHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Public routes
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.LoginLocal)
			r.Post("/ldap", h.Auth.LoginLDAP)
			r.Post("/refresh", h.Auth.Refresh)
			r.Post("/logout", h.Auth.Logout)

			r.With(h.RequireAuth).Get("/me", h.Auth.Me)
		})

		r.Get("/directory", h.Business.GetDirectory)

		r.Route("/businesses", func(r chi.Router) {
			r.Get("/", h.Business.GetNearby)
			r.Get("/{id}/reviews", h.Review.ListReviews)
			r.Get("/{id}/rating", h.Review.GetRating)
		})

		r.Route("/institutions", func(r chi.Router) {
			r.Get("/", h.Institution.GetInstitutions)
			r.Get("/{id}", h.Institution.GetInstitution)
		})

		r.Post("/reviews", h.Review.CreateReview)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.Event.ListEvents)
			r.Get("/{id}", h.Event.GetEvent)
			r.With(h.RequireAuth).Post("/", h.Event.CreateEvent)
		})

		r.Route("/registrations", func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Post("/", h.Registration.CreateRegistration)
			r.Get("/mine", h.Registration.ListMine)
		})
	})

	return r
}
