package domain

import "errors"

var (
	ErrInvalidUpload    = errors.New("invalid upload")
	ErrUploadTooLarge   = errors.New("upload too large")
	ErrToolUnavailable  = errors.New("tool unavailable")
	ErrToolTimeout      = errors.New("tool timed out")
	ErrToolFailed       = errors.New("tool failed")
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrBadKey           = errors.New("bad artifact key")
)
