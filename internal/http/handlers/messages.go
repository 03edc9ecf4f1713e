package handlers

import (
	"errors"
	"strings"

	"github.com/mrithyunjay/write-hand/internal/domain"
)

// User-facing form messages, keyed by locale then message id. The service
// serves en and id (see middleware.I18N).
var messages = map[string]map[string]string{
	"en": {
		"invalid_upload":   "Upload rejected",
		"too_large":        "The uploaded file is too large.",
		"tool_unavailable": "handwrite is not installed. Run: pip install handwrite",
		"timeout":          "Font generation timed out. Please try again.",
		"tool_failed":      "handwrite failed",
		"internal":         "Something went wrong. Please try again.",
	},
	"id": {
		"invalid_upload":   "Unggahan ditolak",
		"too_large":        "Berkas yang diunggah terlalu besar.",
		"tool_unavailable": "handwrite belum terpasang. Jalankan: pip install handwrite",
		"timeout":          "Pembuatan font melebihi batas waktu. Silakan coba lagi.",
		"tool_failed":      "handwrite gagal",
		"internal":         "Terjadi kesalahan. Silakan coba lagi.",
	},
}

func tr(locale, id string) string {
	if m, ok := messages[locale]; ok {
		if s, ok := m[id]; ok {
			return s
		}
	}
	return messages["en"][id]
}

// userMessage maps a job error to the localized text shown on the form.
func userMessage(locale string, err error) string {
	switch {
	case errors.Is(err, domain.ErrUploadTooLarge):
		return tr(locale, "too_large")
	case errors.Is(err, domain.ErrInvalidUpload):
		return tr(locale, "invalid_upload") + ": " + errReason(err)
	case errors.Is(err, domain.ErrToolUnavailable):
		return tr(locale, "tool_unavailable")
	case errors.Is(err, domain.ErrToolTimeout):
		return tr(locale, "timeout")
	case errors.Is(err, domain.ErrToolFailed):
		if reason := errReason(err); reason != "" {
			return tr(locale, "tool_failed") + ": " + reason
		}
		return tr(locale, "tool_failed")
	default:
		return tr(locale, "internal")
	}
}

// errReason strips the sentinel prefix from a wrapped domain error,
// leaving the human detail ("unsupported type", tool stderr, ...).
func errReason(err error) string {
	s := err.Error()
	if i := strings.Index(s, ": "); i >= 0 {
		return s[i+2:]
	}
	return s
}
