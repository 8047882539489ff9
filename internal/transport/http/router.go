package http

import (
	"net/http"
	"time"

	httpmw "github.com/Askiater/speak-to-me/internal/transport/http/middleware"
	"github.com/Askiater/speak-to-me/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(h *Handler, verifier httpmw.TokenVerifier, wsServer *ws.Server, allowedOrigin string) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	// WS endpoint — вне Timeout-middleware: соединение долгоживущее
	r.Get("/ws", wsServer.HandleWS)

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewareChi.Timeout(30 * time.Second))

		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/login", h.Login)
			ar.Post("/logout", h.Logout)

			ar.Group(func(pr chi.Router) {
				pr.Use(httpmw.AuthMiddleware(verifier))
				pr.Get("/me", h.Me)

				pr.Group(func(admin chi.Router) {
					admin.Use(httpmw.RequireAdmin)
					admin.Post("/users", h.CreateUser)
					admin.Get("/users", h.ListUsers)
					admin.Put("/users/{id}", h.UpdateUser)
					admin.Delete("/users/{id}", h.DeleteUser)
				})
			})
		})

		api.Route("/rooms", func(rr chi.Router) {
			rr.Get("/{roomId}", h.GetRoom)

			rr.Group(func(pr chi.Router) {
				pr.Use(httpmw.AuthMiddleware(verifier))
				pr.Post("/create", h.CreateRoom)

				pr.Group(func(admin chi.Router) {
					admin.Use(httpmw.RequireAdmin)
					admin.Get("/admin/sessions", h.AdminSessions)
				})
			})
		})

		api.Get("/turn-credentials", h.TurnCredentials)
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return r
}
