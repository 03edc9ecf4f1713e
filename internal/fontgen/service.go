// Package fontgen runs the handwrite tool and orchestrates one
// font-generation job from validated upload to confirmed artifact.
package fontgen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrithyunjay/write-hand/internal/domain"
	"github.com/mrithyunjay/write-hand/internal/sanitize"
	"github.com/mrithyunjay/write-hand/internal/storage"
	"github.com/mrithyunjay/write-hand/internal/upload"
)

// Request carries the raw, untrusted inputs of one generation request.
type Request struct {
	Image     io.Reader
	ImageName string
	Family    string
	Style     string
	Filename  string
}

// Service owns the lifecycle of one generation job: validate, sanitize,
// run the tool, always delete the uploaded input, confirm the artifact.
type Service struct {
	log       zerolog.Logger
	uploads   *upload.Store
	artifacts *storage.ArtifactStore
	runner    Runner
}

func NewService(log zerolog.Logger, uploads *upload.Store, artifacts *storage.ArtifactStore, runner Runner) *Service {
	return &Service{log: log, uploads: uploads, artifacts: artifacts, runner: runner}
}

// Artifacts exposes the store the generated fonts land in.
func (s *Service) Artifacts() *storage.ArtifactStore {
	return s.artifacts
}

// Generate runs the full job sequence and returns the job record. The
// returned job's ArtifactKey addresses the generated font on success. All
// failures come back wrapped in one of the domain sentinel errors.
func (s *Service) Generate(ctx context.Context, req Request) (*domain.Job, error) {
	job := &domain.Job{
		Status:    domain.JobStatusValidating,
		CreatedAt: time.Now(),
	}

	// The upload is checked before the text fields, mirroring the order
	// the form errors are reported in.
	if req.Image == nil {
		return job, fmt.Errorf("%w: no file part in the request", domain.ErrInvalidUpload)
	}
	if req.ImageName == "" {
		return job, fmt.Errorf("%w: no file selected", domain.ErrInvalidUpload)
	}
	if _, err := s.uploads.Ext(req.ImageName); err != nil {
		return job, err
	}

	job.Family = sanitize.Text(req.Family)
	job.Style = sanitize.Text(req.Style)
	job.ArtifactKey = sanitize.Text(req.Filename)
	switch {
	case job.Family == "":
		return job, fmt.Errorf("%w: font family name is required", domain.ErrInvalidUpload)
	case job.Style == "":
		return job, fmt.Errorf("%w: font style is required", domain.ErrInvalidUpload)
	case job.ArtifactKey == "":
		return job, fmt.Errorf("%w: file name is required", domain.ErrInvalidUpload)
	}

	jobID, imagePath, err := s.uploads.Save(req.Image, req.ImageName)
	if err != nil {
		return job, err
	}
	job.ID = jobID
	job.ImagePath = imagePath
	// The upload is owned by this job alone and goes away on every exit
	// path: success, tool failure, timeout, tool missing.
	defer func() {
		if err := s.uploads.Remove(imagePath); err != nil {
			s.log.Warn().Err(err).Str("job_id", jobID).Msg("failed to remove uploaded image")
		}
	}()

	job.Status = domain.JobStatusRunning
	s.log.Info().
		Str("job_id", jobID).
		Str("key", job.ArtifactKey).
		Str("family", job.Family).
		Str("style", job.Style).
		Msg("running handwrite")

	res, runErr := s.runner.Run(ctx, imagePath, s.artifacts.Dir(), Params{
		Family:   job.Family,
		Style:    job.Style,
		Filename: job.ArtifactKey,
	})
	job.ExitCode = res.ExitCode
	job.Diagnostic = res.Diagnostic()
	job.FinishedAt = time.Now()

	if runErr != nil {
		if errors.Is(runErr, domain.ErrToolTimeout) {
			job.Status = domain.JobStatusTimedOut
		} else {
			job.Status = domain.JobStatusFailed
		}
		s.log.Error().Err(runErr).
			Str("job_id", jobID).
			Int("exit_code", job.ExitCode).
			Msg("handwrite did not complete")
		return job, runErr
	}

	// Exit code zero is not proof of output: confirm the artifact before
	// reporting success.
	if !s.artifacts.Exists(job.ArtifactKey) {
		job.Status = domain.JobStatusFailed
		s.log.Error().
			Str("job_id", jobID).
			Str("key", job.ArtifactKey).
			Msg("handwrite exited cleanly but wrote no output")
		return job, fmt.Errorf("%w: tool produced no output file", domain.ErrToolFailed)
	}

	job.Status = domain.JobStatusSucceeded
	s.log.Info().
		Str("job_id", jobID).
		Str("key", job.ArtifactKey).
		Dur("took", job.FinishedAt.Sub(job.CreatedAt)).
		Msg("font generated")
	return job, nil
}
