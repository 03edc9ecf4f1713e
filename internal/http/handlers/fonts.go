package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mrithyunjay/write-hand/internal/sanitize"
)

// fontKey extracts and validates the artifact key from the URL. The path
// segment must already be in sanitized form; anything that would sanitize
// differently is rejected outright.
func fontKey(r *http.Request) (string, bool) {
	key := chi.URLParam(r, "key")
	return key, sanitize.IsClean(key)
}

// FontPage serves the retrieval landing page for a generated font.
func (a *App) FontPage(w http.ResponseWriter, r *http.Request) {
	key, ok := fontKey(r)
	if !ok {
		http.Error(w, "bad font key", http.StatusBadRequest)
		return
	}
	if !a.Service.Artifacts().Exists(key) {
		http.Error(w, "font not found, it may have already been downloaded", http.StatusNotFound)
		return
	}
	a.render(w, http.StatusOK, "download.html", map[string]string{"Key": key})
}

// FontFile streams the artifact as an attachment and deletes it afterwards
// regardless of how the transfer ended: each font is served at most once.
func (a *App) FontFile(w http.ResponseWriter, r *http.Request) {
	key, ok := fontKey(r)
	if !ok {
		http.Error(w, "bad font key", http.StatusBadRequest)
		return
	}

	artifacts := a.Service.Artifacts()
	f, info, err := artifacts.Open(key)
	if err != nil {
		http.Error(w, "font not found, it may have already been downloaded", http.StatusNotFound)
		return
	}
	defer func() {
		f.Close()
		if err := artifacts.Remove(key); err != nil {
			a.Log.Warn().Err(err).Str("key", key).Msg("failed to remove served artifact")
		}
	}()

	w.Header().Set("Content-Type", "font/ttf")
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+key+`.ttf"`)
	if _, err := io.Copy(w, f); err != nil {
		// Client went away mid-transfer; the artifact is still consumed.
		a.Log.Debug().Err(err).Str("key", key).Msg("font transfer aborted")
	}
}
