package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"stockwatch/internal/pkg/limiter"
	"stockwatch/internal/pkg/logx"
	"stockwatch/internal/pkg/resp"
)

const (
	// credential submissions per second and burst, per client IP
	AuthRate  = 0.2
	AuthBurst = 5
)

// Router builds the route table. ctx bounds background work started for
// the router, such as the rate limiter sweep.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(AuthRate), AuthBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host {
				return true
			}
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]string{
			"status":  "ok",
			"service": "stockwatch",
		})
	})

	r.Group(func(web chi.Router) {
		web.Use(deps.Sessions.Load)

		web.Group(func(public chi.Router) {
			public.Use(authLimiter.Middleware)

			public.Get("/login", HandleLoginPage(deps))
			public.Post("/login", HandleLogin(deps))
			public.Get("/register", HandleRegisterPage(deps))
			public.Post("/register", HandleRegister(deps))
		})

		web.Group(func(private chi.Router) {
			private.Use(deps.Sessions.RequireAuth)

			private.Get("/", HandleIndex(deps))
			private.Get("/add", HandleAddPage(deps))
			private.Post("/add", HandleAdd(deps))
			private.Get("/remove", HandleRemovePage(deps))
			private.Post("/remove", HandleRemove(deps))
			private.Get("/logout", HandleLogout(deps))
			private.Get("/ws/quotes", HandleLiveQuotes(deps, wsUpgrader))
		})
	})

	return r
}
