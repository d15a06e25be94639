package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"fashionmuse/internal/domain"
	"fashionmuse/internal/infra"
	"fashionmuse/internal/middleware"
	"fashionmuse/internal/orchestrator"
	"fashionmuse/internal/status"
)

// App bundles the dependencies the HTTP handlers need.
type App struct {
	Config       *infra.Config
	Logger       zerolog.Logger
	Ledger       domain.LedgerStore
	Orchestrator *orchestrator.Orchestrator
	Status       *status.Reader
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

func (a *App) currentAccountID(r *http.Request) string {
	return middleware.AccountIDFromContext(r.Context())
}
