package domain

import (
	"fmt"
	"strings"
	"time"
)

// JobStatus enumerates generation job lifecycle states.
type JobStatus string

const (
	// JobStatusPending is a logical pre-state covering request validation.
	// It never persists: a job row is only written once credits are
	// reserved, already in JobStatusProcessing.
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	// JobStatusCancelled is reserved for future use. The pipeline never
	// produces it, but readers must keep recognizing the value.
	JobStatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further status transition may leave s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// SlotFailedURL marks a slot whose synthesis or publish step failed. It keeps
// the slot's position in ImageURLs so clients can render an error tile.
const SlotFailedURL = "error://slot-failed"

// Job is one generation request tracked from processing to a terminal state.
type Job struct {
	ID           string
	AccountID    string
	ReferenceURL string
	ImageCount   int
	AspectRatio  string
	Prompt       string
	Style        string
	CameraAngle  string
	Lighting     string
	Status       JobStatus
	ImageURLs    []string
	ErrorMessage string
	IsFavorite   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
	ProcessingMs *int64
	ClaimedAt    *time.Time
}

// GenerationSpec is the validated submission payload. Style, CameraAngle and
// Lighting are optional; when present they must come from the catalog.
type GenerationSpec struct {
	ReferenceURL string
	ImageCount   int
	AspectRatio  string
	Prompt       string
	Style        string
	CameraAngle  string
	Lighting     string
}

// Normalize trims free-text fields and applies defaults.
func (s *GenerationSpec) Normalize() {
	s.ReferenceURL = strings.TrimSpace(s.ReferenceURL)
	s.Prompt = strings.TrimSpace(s.Prompt)
	s.Style = strings.TrimSpace(s.Style)
	s.CameraAngle = strings.TrimSpace(s.CameraAngle)
	s.Lighting = strings.TrimSpace(s.Lighting)
	s.AspectRatio = strings.TrimSpace(strings.ToLower(s.AspectRatio))
	if s.AspectRatio == "" {
		s.AspectRatio = DefaultAspectRatio
	}
}

// Validate rejects submissions before any credit movement or job creation.
// All failures wrap ErrValidation.
func (s GenerationSpec) Validate() error {
	if s.ReferenceURL == "" {
		return fmt.Errorf("%w: reference url is required", ErrValidation)
	}
	if !strings.HasPrefix(s.ReferenceURL, "http://") && !strings.HasPrefix(s.ReferenceURL, "https://") {
		return fmt.Errorf("%w: reference url must be http(s)", ErrValidation)
	}
	if s.ImageCount < MinImagesPerGeneration || s.ImageCount > MaxImagesPerGeneration {
		return fmt.Errorf("%w: image count must be between %d and %d", ErrValidation, MinImagesPerGeneration, MaxImagesPerGeneration)
	}
	if s.Prompt == "" {
		return fmt.Errorf("%w: prompt is required", ErrValidation)
	}
	if len(s.Prompt) > MaxPromptLength {
		return fmt.Errorf("%w: prompt exceeds %d characters", ErrValidation, MaxPromptLength)
	}
	if !ValidAspectRatio(s.AspectRatio) {
		return fmt.Errorf("%w: unsupported aspect ratio %q", ErrValidation, s.AspectRatio)
	}
	if s.Style != "" && !ValidStyle(s.Style) {
		return fmt.Errorf("%w: unsupported style %q", ErrValidation, s.Style)
	}
	if s.CameraAngle != "" && !ValidCameraAngle(s.CameraAngle) {
		return fmt.Errorf("%w: unsupported camera angle %q", ErrValidation, s.CameraAngle)
	}
	if s.Lighting != "" && !ValidLighting(s.Lighting) {
		return fmt.Errorf("%w: unsupported lighting %q", ErrValidation, s.Lighting)
	}
	return nil
}
