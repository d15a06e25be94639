package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fashionmuse/internal/domain"
)

type generationCreateRequest struct {
	ReferenceImageURL string `json:"reference_image_url"`
	ImageCount        int    `json:"image_count"`
	AspectRatio       string `json:"aspect_ratio"`
	Prompt            string `json:"prompt"`
	Style             string `json:"style"`
	CameraAngle       string `json:"camera_angle"`
	Lighting          string `json:"lighting"`
}

type generationView struct {
	ID                string     `json:"id"`
	Status            string     `json:"status"`
	ReferenceImageURL string     `json:"reference_image_url"`
	ImageCount        int        `json:"image_count"`
	AspectRatio       string     `json:"aspect_ratio"`
	Prompt            string     `json:"prompt"`
	Style             string     `json:"style,omitempty"`
	CameraAngle       string     `json:"camera_angle,omitempty"`
	Lighting          string     `json:"lighting,omitempty"`
	ImageURLs         []string   `json:"image_urls"`
	ErrorMessage      string     `json:"error_message,omitempty"`
	IsFavorite        bool       `json:"is_favorite"`
	CreatedAt         time.Time  `json:"created_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	ProcessingMs      *int64     `json:"processing_ms,omitempty"`
}

func toGenerationView(job *domain.Job) generationView {
	urls := job.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return generationView{
		ID:                job.ID,
		Status:            string(job.Status),
		ReferenceImageURL: job.ReferenceURL,
		ImageCount:        job.ImageCount,
		AspectRatio:       job.AspectRatio,
		Prompt:            job.Prompt,
		Style:             job.Style,
		CameraAngle:       job.CameraAngle,
		Lighting:          job.Lighting,
		ImageURLs:         urls,
		ErrorMessage:      job.ErrorMessage,
		IsFavorite:        job.IsFavorite,
		CreatedAt:         job.CreatedAt,
		CompletedAt:       job.CompletedAt,
		ProcessingMs:      job.ProcessingMs,
	}
}

// GenerationsCreate accepts a submission, reserves credits and enqueues the
// job. It answers 202: the images arrive asynchronously.
func (a *App) GenerationsCreate(w http.ResponseWriter, r *http.Request) {
	accountID := a.currentAccountID(r)
	if accountID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing account context")
		return
	}
	var req generationCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	job, err := a.Orchestrator.Submit(r.Context(), accountID, domain.GenerationSpec{
		ReferenceURL: req.ReferenceImageURL,
		ImageCount:   req.ImageCount,
		AspectRatio:  req.AspectRatio,
		Prompt:       req.Prompt,
		Style:        req.Style,
		CameraAngle:  req.CameraAngle,
		Lighting:     req.Lighting,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			a.error(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		case errors.Is(err, domain.ErrInsufficientCredits):
			a.error(w, http.StatusPaymentRequired, "insufficient_credits", "not enough credits for this generation")
		default:
			a.Logger.Error().Err(err).Str("account_id", accountID).Msg("generation submit failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to accept generation")
		}
		return
	}
	a.json(w, http.StatusAccepted, map[string]string{
		"id":     job.ID,
		"status": string(job.Status),
	})
}

func (a *App) GenerationsGet(w http.ResponseWriter, r *http.Request) {
	accountID := a.currentAccountID(r)
	jobID := chi.URLParam(r, "id")
	job, err := a.Status.Get(r.Context(), accountID, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "generation not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("generation lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load generation")
		return
	}
	a.json(w, http.StatusOK, toGenerationView(job))
}

func (a *App) GenerationsList(w http.ResponseWriter, r *http.Request) {
	accountID := a.currentAccountID(r)
	limit := domain.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	jobs, err := a.Status.List(r.Context(), accountID, limit)
	if err != nil {
		a.Logger.Error().Err(err).Str("account_id", accountID).Msg("generation list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list generations")
		return
	}
	views := make([]generationView, 0, len(jobs))
	for i := range jobs {
		views = append(views, toGenerationView(&jobs[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"generations": views})
}

// GenerationsFavorite flips the favorite mark on one of the caller's
// generations and reports the new value.
func (a *App) GenerationsFavorite(w http.ResponseWriter, r *http.Request) {
	accountID := a.currentAccountID(r)
	jobID := chi.URLParam(r, "id")
	favorite, err := a.Status.ToggleFavorite(r.Context(), accountID, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "generation not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("generation favorite toggle failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update generation")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":          jobID,
		"is_favorite": favorite,
	})
}

func (a *App) GenerationsDelete(w http.ResponseWriter, r *http.Request) {
	accountID := a.currentAccountID(r)
	jobID := chi.URLParam(r, "id")
	if err := a.Status.Delete(r.Context(), accountID, jobID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "generation not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("generation delete failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete generation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
