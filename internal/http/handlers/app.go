package handlers

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mrithyunjay/write-hand/internal/fontgen"
	"github.com/mrithyunjay/write-hand/internal/infra"
)

//go:embed templates/*.html
var templateFS embed.FS

// App is the handler container: every endpoint hangs off it and all of its
// collaborators are injected at construction time.
type App struct {
	Log     zerolog.Logger
	Cfg     *infra.Config
	Service *fontgen.Service

	templates *template.Template
	metrics   *metricsSet
}

func NewApp(log zerolog.Logger, cfg *infra.Config, svc *fontgen.Service) *App {
	return &App{
		Log:       log,
		Cfg:       cfg,
		Service:   svc,
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
		metrics:   newMetrics(),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) render(w http.ResponseWriter, code int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := a.templates.ExecuteTemplate(w, name, data); err != nil {
		a.Log.Error().Err(err).Str("template", name).Msg("render failed")
	}
}
