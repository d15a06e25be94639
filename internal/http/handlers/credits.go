package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fashionmuse/internal/domain"
)

type ledgerEntryView struct {
	ID           string    `json:"id"`
	Amount       int       `json:"amount"`
	Kind         string    `json:"kind"`
	Description  string    `json:"description,omitempty"`
	RelatedJobID string    `json:"related_job_id,omitempty"`
	BalanceAfter int       `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

func toLedgerEntryView(e *domain.LedgerEntry) ledgerEntryView {
	return ledgerEntryView{
		ID:           e.ID,
		Amount:       e.Amount,
		Kind:         string(e.Kind),
		Description:  e.Description,
		RelatedJobID: e.RelatedJobID,
		BalanceAfter: e.BalanceAfter,
		CreatedAt:    e.CreatedAt,
	}
}

func (a *App) CreditsBalance(w http.ResponseWriter, r *http.Request) {
	accountID := a.currentAccountID(r)
	if accountID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing account context")
		return
	}
	balance, err := a.Ledger.Balance(r.Context(), accountID)
	if err != nil {
		a.Logger.Error().Err(err).Str("account_id", accountID).Msg("balance lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load balance")
		return
	}
	a.json(w, http.StatusOK, map[string]int{"balance": balance})
}

func (a *App) CreditsHistory(w http.ResponseWriter, r *http.Request) {
	accountID := a.currentAccountID(r)
	if accountID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing account context")
		return
	}
	limit := domain.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	entries, err := a.Ledger.EntriesForAccount(r.Context(), accountID, limit)
	if err != nil {
		a.Logger.Error().Err(err).Str("account_id", accountID).Msg("ledger history failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load history")
		return
	}
	views := make([]ledgerEntryView, 0, len(entries))
	for i := range entries {
		views = append(views, toLedgerEntryView(&entries[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"entries": views})
}

type bonusRequest struct {
	Amount      int    `json:"amount"`
	Description string `json:"description"`
}

// CreditsBonus grants promotional credits to the authenticated account, e.g.
// a welcome bonus claimed once from the onboarding flow.
func (a *App) CreditsBonus(w http.ResponseWriter, r *http.Request) {
	accountID := a.currentAccountID(r)
	if accountID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing account context")
		return
	}
	var req bonusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	entry, err := a.Ledger.Credit(r.Context(), accountID, req.Amount, domain.EntryKindBonus, req.Description, "")
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			a.error(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
			return
		}
		a.Logger.Error().Err(err).Str("account_id", accountID).Msg("bonus grant failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to grant bonus")
		return
	}
	a.json(w, http.StatusOK, toLedgerEntryView(entry))
}
