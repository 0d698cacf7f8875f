package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/medskill-verify/internal/application/registration"
	"github.com/medskill-verify/internal/application/verification"
	"github.com/medskill-verify/internal/config"
	jwtinfra "github.com/medskill-verify/internal/infrastructure/jwt"
	"github.com/medskill-verify/internal/transport/http/handler"
	appmiddleware "github.com/medskill-verify/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	PendingRepo PendingRepository
	ProfileRepo ProfileRepository
	Identities  IdentityProvider
	Dispatcher  VerificationDispatcher
	JWTProvider *jwtinfra.Provider // optional; enables /api/users/me
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 per client IP.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	registrationSvc := registration.NewService(registration.ServiceDeps{
		PendingRepo: deps.PendingRepo,
		Dispatcher:  deps.Dispatcher,
		Expiry:      registration.PolicyFor(cfg.PendingTTL),
		BcryptCost:  cfg.BcryptCost,
	})
	verificationSvc := verification.NewService(verification.ServiceDeps{
		PendingRepo: deps.PendingRepo,
		ProfileRepo: deps.ProfileRepo,
		Identities:  deps.Identities,
		ClaimLease:  cfg.ClaimLease,
	})

	healthH := handler.NewHealthHandler()
	registrationH := handler.NewRegistrationHandler(registrationSvc)
	verificationH := handler.NewVerificationHandler(verificationSvc)

	r.Get("/", healthH.Root)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/email", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/register", registrationH.Register)
			r.With(sensitiveRL.Limit).Get("/verify/{token}", verificationH.Verify)
		})

		if deps.JWTProvider != nil {
			profileH := handler.NewProfileHandler(deps.ProfileRepo)
			r.With(appmiddleware.Auth(deps.JWTProvider)).Get("/users/me", profileH.Me)
		}
	})

	return r
}
