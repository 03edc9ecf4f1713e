package handlers

import (
	"net/http"
	"os"
	"path/filepath"
)

type formPage struct {
	Message  string
	Family   string
	Style    string
	Filename string
}

// Index serves the informational landing page.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	a.render(w, http.StatusOK, "index.html", nil)
}

// GenerateForm serves the upload form.
func (a *App) GenerateForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, http.StatusOK, "generate.html", formPage{})
}

// DownloadTemplate serves the fixed handwriting template sheet as an
// attachment. 404 when the asset is absent from the deployment.
func (a *App) DownloadTemplate(w http.ResponseWriter, r *http.Request) {
	path := a.Cfg.TemplatePath
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	http.ServeFile(w, r, path)
}
