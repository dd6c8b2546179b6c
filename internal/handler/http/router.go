package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/forcemodel/forcesim-backend-go/internal/handler/http/middleware"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/jwt"
)

func NewRouter(env string, JWTService jwt.Service, authHandler AuthHandler, simHandler SimulationHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "forcesim"),
		slog.String("version", "v1.0.0"),
		slog.String("env", env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Post("/auth/token", authHandler.Token)

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", simHandler.List)
			r.Get("/{id}", simHandler.Get)
			r.Get("/{id}/units", simHandler.Units)
			r.Get("/{id}/units/{uic}/roster", simHandler.Roster)
			r.Get("/{id}/vacancies", simHandler.Vacancies)

			// Token rides the query string; validated by the handler.
			r.Get("/{id}/events", simHandler.Stream)

			// Mutations require an access token
			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

				r.Post("/", simHandler.Create)
				r.Post("/{id}/advance", simHandler.Advance)
				r.Post("/{id}/archive", simHandler.Archive)
				r.Post("/{id}/events/token", simHandler.StreamToken)
			})
		})
	})
	return r
}
