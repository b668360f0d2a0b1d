package routes

import (
	"log/slog"
	"net/http"

	_ "github.com/Dosada05/bridge-judging/docs" // регистрирует OpenAPI документ для /swagger/doc.json
	"github.com/Dosada05/bridge-judging/handlers"
	"github.com/Dosada05/bridge-judging/metrics"
	"github.com/Dosada05/bridge-judging/middleware"
	"github.com/Dosada05/bridge-judging/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Dependencies struct {
	AuthHandler      *handlers.AuthHandler
	TeamHandler      *handlers.TeamHandler
	CheckInHandler   *handlers.CheckInHandler
	ScoringHandler   *handlers.ScoringHandler
	DashboardHandler *handlers.DashboardHandler
	WebSocketHandler *handlers.WebSocketHandler
	HealthHandler    *handlers.HealthHandler

	Resolver    middleware.TokenResolver
	Metrics     *metrics.Recorder
	CORSOrigins []string
	Logger      *slog.Logger
}

func SetupRoutes(router *chi.Mux, deps Dependencies) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(deps.Metrics.Middleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(deps.Resolver, deps.Logger)

	router.Get("/healthz", deps.HealthHandler.Health)
	router.Handle("/metrics", deps.Metrics.Handler())
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/signin", deps.AuthHandler.SignIn)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/signout", deps.AuthHandler.SignOut)
			r.Get("/me", deps.AuthHandler.Me)
			r.Get("/home", deps.AuthHandler.Home)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/teams", deps.TeamHandler.ListTeams)
		r.Get("/ws/teams", deps.WebSocketHandler.ServeTeams)

		r.Route("/checkin", func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleVolunteer, models.RoleAdmin))
			r.Get("/teams", deps.CheckInHandler.Board)
			r.Post("/teams/{teamNumber}", deps.CheckInHandler.RequestStatus)
		})

		r.Route("/scoring", func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleJudge, models.RoleAdmin))
			r.Get("/teams/{teamNumber}", deps.ScoringHandler.FindTeam)
			r.Post("/teams/{teamNumber}/scores", deps.ScoringHandler.SubmitScore)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleAdmin))

			r.Get("/stats", deps.DashboardHandler.Stats)
			r.Get("/report", deps.DashboardHandler.Report)
			r.Get("/export", deps.DashboardHandler.Export)
			r.Post("/export/archive", deps.DashboardHandler.Archive)
			r.Post("/standings/recompute", deps.DashboardHandler.RecomputeStandings)
			r.Get("/scores", deps.ScoringHandler.ListScores)

			r.Route("/teams", func(r chi.Router) {
				r.Post("/", deps.TeamHandler.CreateTeam)
				r.Get("/{teamID}", deps.TeamHandler.GetTeamByID)
				r.Put("/{teamID}/arrival", deps.TeamHandler.SetArrivalTime)
				r.Delete("/{teamID}", deps.TeamHandler.DeleteTeam)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"the requested resource could not be found"}` + "\n"))
	})
}
