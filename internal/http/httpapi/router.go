package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mrithyunjay/write-hand/internal/http/handlers"
	"github.com/mrithyunjay/write-hand/internal/middleware"
)

// NewRouter wires the full HTTP surface.
func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(app.Log))
	r.Use(middleware.I18N(app.Cfg.DefaultLocale))

	r.Get("/healthz", app.Health)
	r.Method(stdhttp.MethodGet, "/metrics", app.Metrics())

	r.Get("/", app.Index)
	r.Get("/download-template", app.DownloadTemplate)

	r.Route("/generate", func(r chi.Router) {
		r.Get("/", app.GenerateForm)
		r.With(middleware.RateLimit(app.Cfg.RateLimitPerMin, time.Minute)).Post("/", app.Generate)
	})

	r.Route("/font/{key}", func(r chi.Router) {
		r.Get("/", app.FontPage)
		r.Get("/file", app.FontFile)
	})

	return r
}
