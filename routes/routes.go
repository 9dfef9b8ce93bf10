package routes

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Dosada05/volley-mixer/handlers"
	"github.com/Dosada05/volley-mixer/middleware"
	"github.com/Dosada05/volley-mixer/models"
)

//go:embed openapi.json
var openAPISpec []byte

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
}

type Handlers struct {
	Auth        *handlers.AuthHandler
	Players     *handlers.PlayerHandler
	Rounds      *handlers.RoundHandler
	Leaderboard *handlers.LeaderboardHandler
	Dashboard   *handlers.DashboardHandler
	WebSocket   *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	router.Get("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(openAPISpec)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/openapi.json")))

	router.Get("/ws/event", h.WebSocket.ServeWs)

	organizerOnly := func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret))
		r.Use(middleware.Authorize(models.RoleOrganizer))
	}

	router.Post("/auth/login", h.Auth.Login)

	router.Route("/players", func(r chi.Router) {
		r.Get("/", h.Players.ListPlayers)

		r.Group(func(r chi.Router) {
			organizerOnly(r)
			r.Post("/", h.Players.AddPlayer)
			r.Put("/", h.Players.ReplaceRoster)
			r.Patch("/active", h.Players.SetAllActive)
			r.Put("/{playerID}", h.Players.UpdatePlayer)
			r.Patch("/{playerID}/active", h.Players.SetActive)
			r.Delete("/{playerID}", h.Players.RemovePlayer)
		})
	})

	router.Route("/rounds", func(r chi.Router) {
		r.Get("/", h.Rounds.ListRounds)
		r.Get("/current", h.Rounds.CurrentRound)
		r.Get("/{number}", h.Rounds.GetRound)

		r.Group(func(r chi.Router) {
			organizerOnly(r)
			r.Post("/", h.Rounds.Generate)
			r.Post("/preview", h.Rounds.Preview)
			r.Delete("/{number}", h.Rounds.DeleteRound)
		})
	})

	router.Group(func(r chi.Router) {
		organizerOnly(r)
		r.Post("/matches/{matchID}/winner", h.Rounds.RecordWinner)
		r.Post("/event/reset", h.Players.ResetEvent)
		r.Post("/leaderboard/publish", h.Leaderboard.Publish)
		r.Get("/dashboard", h.Dashboard.Stats)
	})

	router.Get("/leaderboard", h.Leaderboard.Standings)
}
