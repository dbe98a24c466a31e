package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kartikfr/card-genius/internal/auth"
	"github.com/kartikfr/card-genius/internal/handler"
)

func Setup(h *handler.Handler, tokens *auth.TokenService) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Routes
	r.Get("/health", healthCheck)

	r.Post("/recommendations", h.Recommend)
	r.Post("/recommendations/batch", h.RecommendBatch)

	r.Post("/sessions", h.CreateSession)
	r.Put("/sessions/{sessionID}/profile", h.UpdateSessionProfile)
	r.Get("/sessions/{sessionID}/recommendations", h.GetSessionRecommendations)

	r.Get("/cards", h.ListCards)
	r.Get("/cards/{cardID}", h.GetCard)
	r.Get("/cards/{cardID}/updates", h.GetCardUpdates)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(tokens))
			r.Post("/cards", h.CreateCard)
			r.Put("/cards", h.ReplaceCatalog)
			r.Get("/cards/export", h.ExportCatalog)
			r.Put("/cards/{cardID}", h.UpdateCard)
			r.Delete("/cards/{cardID}", h.DeleteCard)
		})
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
