package http

import (
	"net/http"

	"mycore/internal/auth"
	"mycore/internal/config"
	"mycore/internal/http/handler"
	mw "mycore/internal/http/middleware"
	"mycore/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, st *store.Store, jwtSvc *auth.JWT) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{Store: st, JWT: jwtSvc}
	r.Post("/auth/signup", ah.Signup)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{Store: st}
	ob := &handler.OnboardingHandler{Store: st}
	hh := &handler.HabitHandler{Store: st}
	th := &handler.TaskHandler{Store: st}
	ph := &handler.ProjectHandler{Store: st}
	sh := &handler.SuggestionHandler{Store: st}
	stats := &handler.StatsHandler{Store: st}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Post("/auth/logout", ah.Logout)
		r.Get("/me", me.Me)
		r.Post("/reset", me.Reset)

		r.Post("/onboarding", ob.Complete)

		r.Get("/habits", hh.List)
		r.Post("/habits", hh.Create)
		r.Get("/instances/week", hh.Week)
		r.Patch("/instances/{id}", hh.UpdateInstance)

		r.Get("/tasks", th.List)
		r.Post("/tasks", th.Create)
		r.Patch("/tasks/{id}", th.Update)
		r.Delete("/tasks/{id}", th.Delete)

		r.Get("/projects", ph.List)
		r.Post("/projects", ph.Create)

		r.Get("/suggestions", sh.Suggestions)
		r.Get("/stats", stats.Stats)
	})

	return r
}
