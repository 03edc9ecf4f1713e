package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/mrithyunjay/write-hand/internal/domain"
	"github.com/mrithyunjay/write-hand/internal/fontgen"
	"github.com/mrithyunjay/write-hand/internal/middleware"
)

// Generate handles the multipart form post: it drives one full job through
// the lifecycle service and either redirects to the retrieval page or
// re-renders the form with a localized message.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, a.Cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(64 << 10); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			a.metrics.observe("rejected", time.Since(start))
			a.renderFormError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Errorf("%w: %d byte limit", domain.ErrUploadTooLarge, a.Cfg.MaxUploadBytes))
			return
		}
		a.metrics.observe("rejected", time.Since(start))
		a.renderFormError(w, r, http.StatusBadRequest,
			fmt.Errorf("%w: malformed form data", domain.ErrInvalidUpload))
		return
	}

	var image multipart.File
	var imageName string
	if file, header, err := r.FormFile("pngfile"); err == nil {
		defer file.Close()
		image = file
		imageName = header.Filename
	}

	job, err := a.Service.Generate(r.Context(), fontgen.Request{
		Image:     image,
		ImageName: imageName,
		Family:    r.FormValue("family"),
		Style:     r.FormValue("style"),
		Filename:  r.FormValue("filename"),
	})
	if err != nil {
		a.metrics.observe(string(job.Status), time.Since(start))
		a.renderFormError(w, r, statusForError(err), err)
		return
	}

	a.metrics.observe(string(job.Status), time.Since(start))
	http.Redirect(w, r, "/font/"+job.ArtifactKey, http.StatusSeeOther)
}

func (a *App) renderFormError(w http.ResponseWriter, r *http.Request, code int, err error) {
	locale := middleware.LocaleFromContext(r.Context())
	a.render(w, code, "generate.html", formPage{
		Message:  userMessage(locale, err),
		Family:   r.FormValue("family"),
		Style:    r.FormValue("style"),
		Filename: r.FormValue("filename"),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrInvalidUpload):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrToolUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrToolTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrToolFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
