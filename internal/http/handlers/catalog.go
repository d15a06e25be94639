package handlers

import (
	"net/http"

	"fashionmuse/internal/domain"
)

// Catalog publishes the option lists and limits clients need to build the
// submission form. Static, unauthenticated, cache-friendly.
func (a *App) Catalog(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"styles":            domain.GenerationStyles,
		"camera_angles":     domain.CameraAngles,
		"lighting":          domain.LightingOptions,
		"aspect_ratios":     domain.AspectRatios,
		"min_images":        domain.MinImagesPerGeneration,
		"max_images":        domain.MaxImagesPerGeneration,
		"max_prompt_length": domain.MaxPromptLength,
	})
}
