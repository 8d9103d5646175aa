package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/karyawan-management/internal/auth"
	"github.com/frahmantamala/karyawan-management/internal/transport"
	"github.com/frahmantamala/karyawan-management/internal/transport/middleware"
	"github.com/frahmantamala/karyawan-management/internal/transport/swagger"
	"github.com/frahmantamala/karyawan-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Mounter registers a resource's routes under its prefix.
type Mounter interface {
	Mount(r chi.Router)
}

type Deps struct {
	DB             *sql.DB
	Logger         *slog.Logger
	AllowedOrigins []string
	Production     bool
	OpenAPI        []byte
	Photos         http.Handler
	PhotoPrefix    string

	Auth      *auth.Handler
	User      *user.Handler
	Kantors   Mounter
	Jabatans  Mounter
	Karyawans Mounter
}

func NewRouter(d Deps) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(d.Logger))
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.SecurityHeaders(d.Production))
	router.Use(middleware.CORS(d.AllowedOrigins))
	router.Use(chiMiddleware.StripSlashes)

	base := transport.NewBaseHandler(d.Logger)
	health := NewHealthHandler(base, d.DB)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		base.WriteFailure(w, http.StatusNotFound, "Not found", "Route "+r.URL.Path+" does not exist")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		base.WriteFailure(w, http.StatusMethodNotAllowed, "Method not allowed", r.Method+" is not supported on "+r.URL.Path)
	})

	router.Get("/health", health.Health)
	router.Get("/ping", health.Ping)

	if d.OpenAPI != nil {
		router.Get(swagger.SpecPath, swagger.SpecHandler(d.OpenAPI))
		router.Handle("/swagger/*", swagger.Handler())
	}
	if d.Photos != nil {
		router.Handle(d.PhotoPrefix+"*", d.Photos)
	}

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", d.Auth.Register)
			ar.Post("/login", d.Auth.Login)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(d.Auth.AuthMiddleware)

			pr.Get("/user/me", d.User.GetCurrentUser)
			pr.Route("/kantors", d.Kantors.Mount)
			pr.Route("/jabatans", d.Jabatans.Mount)
			pr.Route("/karyawans", d.Karyawans.Mount)
		})
	})

	return router
}
