package routes

import (
	"net/http"
	"time"

	"sitechat/sitechat/controllers"
	"sitechat/sitechat/middlewares"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	SessionSecret  []byte
	SessionTTL     time.Duration
	RequestTimeout time.Duration
}

// NewRouter wires the middleware stack and mounts every route group.
func NewRouter(chatCtrl *controllers.ChatController, healthCtrl *controllers.HealthController, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.RequestLogger)
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	r.Mount("/health", HealthRoutes(healthCtrl))
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.SessionMiddleware(opts.SessionSecret, opts.SessionTTL))
		gr.Mount("/chat", ChatRoutes(chatCtrl))
		gr.Mount("/", SetupRoutes(chatCtrl))
	})
	return r
}
