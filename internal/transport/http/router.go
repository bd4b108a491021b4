package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/td-studios/auth-api/internal/application/accesscode"
	"github.com/td-studios/auth-api/internal/application/auth"
	"github.com/td-studios/auth-api/internal/config"
	"github.com/td-studios/auth-api/internal/infrastructure/dynamo"
	"github.com/td-studios/auth-api/internal/pkg/pinhash"
	"github.com/td-studios/auth-api/internal/transport/http/handler"
	appmiddleware "github.com/td-studios/auth-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    *dynamo.UserRepo
	CodeRepo    *dynamo.AccessCodeRepo
	AttemptRepo *dynamo.AttemptRepo
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — a transport-level throttle on top of the
	// credential-aware guards inside the auth service.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	hasher := pinhash.New(cfg.Auth.BcryptCost)
	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:    deps.UserRepo,
		CodeRepo:    deps.CodeRepo,
		AttemptRepo: deps.AttemptRepo,
		Hasher:      hasher,
		Config:      cfg.Auth,
	})
	codeSvc := accesscode.NewService(accesscode.ServiceDeps{
		CodeRepo:    deps.CodeRepo,
		AttemptRepo: deps.AttemptRepo,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	codeH := handler.NewAccessCodeHandler(codeSvc)

	// ── Public routes ────────────────────────────────────────────────────
	r.Get("/health-check/{action}", healthH.Ping)
	r.With(sensitiveRL.Limit).Post("/signup", authH.Signup)
	r.With(sensitiveRL.Limit).Post("/login", authH.Login)

	// ── Admin routes ─────────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.RequireAdminToken(cfg.AdminAPIToken))

		r.Get("/admin/access-codes", codeH.List)
		r.Post("/admin/access-codes", codeH.Create)
		r.Put("/admin/access-codes/{code}", codeH.Update)
		r.Delete("/admin/access-codes/{code}", codeH.Delete)
		r.Get("/admin/stats", codeH.Stats)
	})

	return r
}
