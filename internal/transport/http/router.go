package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gamification-engine/internal/app"
)

// Handler bundles the engine services behind the REST and websocket surface.
type Handler struct {
	sessions    *app.SessionService
	mappings    *app.MappingService
	leaderboard *app.LeaderboardService
	rewards     *app.RewardService
	catalog     *app.CatalogService
	ws          *WSHandler
}

func NewHandler(
	sessions *app.SessionService,
	mappings *app.MappingService,
	leaderboard *app.LeaderboardService,
	rewards *app.RewardService,
	catalog *app.CatalogService,
) *Handler {
	return &Handler{
		sessions:    sessions,
		mappings:    mappings,
		leaderboard: leaderboard,
		rewards:     rewards,
		catalog:     catalog,
		ws:          NewWSHandler(leaderboard),
	}
}

// Routes wires the HTTP surface.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Post("/sessions", h.createSession)
	r.Get("/sessions/{id}/question", h.nextQuestion)
	r.Post("/sessions/{id}/answer", h.submitAnswer)

	r.Route("/mappings", func(r chi.Router) {
		r.Post("/games/link", h.linkGame)
		r.Post("/games/unlink", h.unlinkGame)
		r.Get("/games/available", h.availableGames)
		r.Post("/users/link", h.linkUser)
		r.Post("/users/unlink", h.unlinkUser)
		r.Get("/users/available", h.availableUsers)
	})

	r.Get("/leaderboard", h.getLeaderboard)
	r.Get("/ws/leaderboard", h.ws.ServeWS)

	r.Post("/rewards", h.createReward)
	r.Post("/rewards/claim", h.claimReward)

	r.Post("/games", h.createGame)
	r.Put("/catalog/games", h.syncExternalGame)
	r.Put("/catalog/users", h.syncExternalUser)

	return r
}
