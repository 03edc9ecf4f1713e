package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mrithyunjay/write-hand/internal/domain"
	"github.com/mrithyunjay/write-hand/internal/fontgen"
	"github.com/mrithyunjay/write-hand/internal/http/handlers"
	"github.com/mrithyunjay/write-hand/internal/infra"
	"github.com/mrithyunjay/write-hand/internal/storage"
	"github.com/mrithyunjay/write-hand/internal/upload"
)

// stubRunner simulates handwrite without spawning a process.
type stubRunner struct {
	calls  int
	err    error
	result fontgen.Result
	silent bool // exit zero but write nothing
}

func (s *stubRunner) Run(_ context.Context, imagePath, outputDir string, p fontgen.Params) (fontgen.Result, error) {
	s.calls++
	if s.err != nil || s.silent {
		return s.result, s.err
	}
	path := filepath.Join(outputDir, p.Filename+".ttf")
	if err := os.WriteFile(path, []byte("ttf-bytes"), 0o644); err != nil {
		return fontgen.Result{}, err
	}
	return s.result, nil
}

func newTestServer(t *testing.T, runner fontgen.Runner, mutate func(*infra.Config)) (http.Handler, *infra.Config) {
	t.Helper()
	cfg, err := infra.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.UploadDir = t.TempDir()
	cfg.OutputDir = t.TempDir()
	cfg.TemplatePath = filepath.Join(t.TempDir(), "template.jpg")
	if mutate != nil {
		mutate(cfg)
	}

	uploads, err := upload.NewStore(cfg.UploadDir, cfg.AllowedExts)
	if err != nil {
		t.Fatalf("upload.NewStore: %v", err)
	}
	artifacts, err := storage.NewArtifactStore(cfg.OutputDir)
	if err != nil {
		t.Fatalf("storage.NewArtifactStore: %v", err)
	}
	svc := fontgen.NewService(zerolog.Nop(), uploads, artifacts, runner)
	app := handlers.NewApp(zerolog.Nop(), cfg, svc)
	return NewRouter(app), cfg
}

func multipartBody(t *testing.T, filename string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("pngfile", filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := fw.Write([]byte("fake-image-bytes")); err != nil {
			t.Fatalf("write image part: %v", err)
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField(%s): %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func postGenerate(t *testing.T, h http.Handler, filename string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, filename, fields)
	req := httptest.NewRequest(http.MethodPost, "/generate", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func defaultFields() map[string]string {
	return map[string]string{"family": "Sans", "style": "Regular", "filename": "myfont"}
}

func uploadsEmpty(t *testing.T, cfg *infra.Config) bool {
	t.Helper()
	entries, err := os.ReadDir(cfg.UploadDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	return len(entries) == 0
}

func TestGenerateSuccessRedirectsToFontPage(t *testing.T) {
	h, cfg := newTestServer(t, &stubRunner{}, nil)

	rec := postGenerate(t, h, "sheet.jpg", defaultFields())
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/font/myfont" {
		t.Fatalf("Location = %q", loc)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "myfont.ttf")); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if !uploadsEmpty(t, cfg) {
		t.Fatal("uploaded image not cleaned up")
	}
}

func TestGenerateRejectsUnsupportedType(t *testing.T) {
	runner := &stubRunner{}
	h, cfg := newTestServer(t, runner, nil)

	rec := postGenerate(t, h, "notes.txt", defaultFields())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Upload rejected") {
		t.Fatalf("body missing rejection message: %q", rec.Body.String())
	}
	if runner.calls != 0 {
		t.Fatal("tool ran for a rejected upload")
	}
	if !uploadsEmpty(t, cfg) {
		t.Fatal("rejected upload left a file behind")
	}
}

func TestGenerateRejectsMissingFile(t *testing.T) {
	runner := &stubRunner{}
	h, _ := newTestServer(t, runner, nil)

	rec := postGenerate(t, h, "", defaultFields())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if runner.calls != 0 {
		t.Fatal("tool ran without a file")
	}
}

func TestGenerateRejectsOversizedBody(t *testing.T) {
	runner := &stubRunner{}
	h, cfg := newTestServer(t, runner, func(cfg *infra.Config) {
		cfg.MaxUploadBytes = 64
	})

	rec := postGenerate(t, h, "sheet.jpg", defaultFields())
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rec.Code)
	}
	if runner.calls != 0 {
		t.Fatal("tool ran for an oversized request")
	}
	if !uploadsEmpty(t, cfg) {
		t.Fatal("oversized request left a file behind")
	}
}

func TestGenerateSurfacesToolFailures(t *testing.T) {
	tests := []struct {
		name       string
		runner     *stubRunner
		wantStatus int
		wantText   string
	}{
		{
			name: "tool failed",
			runner: &stubRunner{
				err:    fmt.Errorf("%w: unreadable template sheet", domain.ErrToolFailed),
				result: fontgen.Result{ExitCode: 1, Stderr: "unreadable template sheet"},
			},
			wantStatus: http.StatusBadGateway,
			wantText:   "unreadable template sheet",
		},
		{
			name:       "tool unavailable",
			runner:     &stubRunner{err: fmt.Errorf("%w: handwrite is not installed", domain.ErrToolUnavailable)},
			wantStatus: http.StatusServiceUnavailable,
			wantText:   "not installed",
		},
		{
			name:       "timeout",
			runner:     &stubRunner{err: fmt.Errorf("%w after 120s", domain.ErrToolTimeout)},
			wantStatus: http.StatusGatewayTimeout,
			wantText:   "timed out",
		},
		{
			name:       "silent success",
			runner:     &stubRunner{silent: true},
			wantStatus: http.StatusBadGateway,
			wantText:   "no output",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, cfg := newTestServer(t, tc.runner, nil)
			rec := postGenerate(t, h, "sheet.jpg", defaultFields())
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tc.wantText) {
				t.Fatalf("body %q missing %q", rec.Body.String(), tc.wantText)
			}
			if !uploadsEmpty(t, cfg) {
				t.Fatal("uploaded image survived a failed job")
			}
		})
	}
}

func TestGenerateLocalizedFailureMessage(t *testing.T) {
	h, _ := newTestServer(t, &stubRunner{err: fmt.Errorf("%w after 120s", domain.ErrToolTimeout)}, nil)

	body, contentType := multipartBody(t, "sheet.jpg", defaultFields())
	req := httptest.NewRequest(http.MethodPost, "/generate", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept-Language", "id-ID,id;q=0.9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "batas waktu") {
		t.Fatalf("body %q not localized", rec.Body.String())
	}
}

func TestFontRetrievalIsSingleUse(t *testing.T) {
	h, _ := newTestServer(t, &stubRunner{}, nil)
	if rec := postGenerate(t, h, "sheet.jpg", defaultFields()); rec.Code != http.StatusSeeOther {
		t.Fatalf("generate status = %d", rec.Code)
	}

	// Landing page sees the artifact.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/font/myfont", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("landing status = %d", rec.Code)
	}

	// First download succeeds and carries the attachment headers.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/font/myfont/file", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first download status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `myfont.ttf`) {
		t.Fatalf("Content-Disposition = %q", cd)
	}
	if data, _ := io.ReadAll(rec.Body); string(data) != "ttf-bytes" {
		t.Fatalf("downloaded bytes = %q", data)
	}

	// Second download finds nothing: the artifact was deleted after serve.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/font/myfont/file", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second download status = %d, want 404", rec.Code)
	}

	// And the landing page now 404s too.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/font/myfont", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("landing after download status = %d, want 404", rec.Code)
	}
}

func TestFontRetrievalRejectsUnsanitizedKeys(t *testing.T) {
	h, _ := newTestServer(t, &stubRunner{}, nil)
	for _, path := range []string{
		"/font/my.font", "/font/my.font/file",
		"/font/..", "/font/../file",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("GET %s status = %d, want 400", path, rec.Code)
		}
	}
}

func TestDuplicateKeyServesExactlyOnce(t *testing.T) {
	h, cfg := newTestServer(t, &stubRunner{}, nil)
	fields := defaultFields()
	fields["filename"] = "dup"

	for i := 0; i < 2; i++ {
		if rec := postGenerate(t, h, "sheet.jpg", fields); rec.Code != http.StatusSeeOther {
			t.Fatalf("generate #%d status = %d", i+1, rec.Code)
		}
	}
	// Both jobs shared the key: one artifact on disk, retrievable once.
	entries, err := os.ReadDir(cfg.OutputDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("output dir holds %d artifacts, want 1", len(entries))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/font/dup/file", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first download status = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/font/dup/file", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second download status = %d, want 404", rec.Code)
	}
}

func TestDownloadTemplate(t *testing.T) {
	h, cfg := newTestServer(t, &stubRunner{}, nil)

	// Absent asset: 404.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download-template", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	if err := os.WriteFile(cfg.TemplatePath, []byte("jpg-bytes"), 0o644); err != nil {
		t.Fatalf("write template asset: %v", err)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download-template", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Fatalf("Content-Disposition = %q", cd)
	}
}

func TestPagesAndHealth(t *testing.T) {
	h, _ := newTestServer(t, &stubRunner{}, nil)
	for path, want := range map[string]string{
		"/":         "write-hand",
		"/generate": "form",
		"/healthz":  "ok",
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), want) {
			t.Fatalf("GET %s body %q missing %q", path, rec.Body.String(), want)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestServer(t, &stubRunner{}, nil)
	if rec := postGenerate(t, h, "sheet.jpg", defaultFields()); rec.Code != http.StatusSeeOther {
		t.Fatalf("generate status = %d", rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "fontgen_jobs_total") {
		t.Fatalf("metrics body missing job counter: %q", rec.Body.String())
	}
}
