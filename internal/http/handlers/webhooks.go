package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fashionmuse/internal/domain"
)

type paymentWebhookRequest struct {
	AccountID     string `json:"account_id"`
	Credits       int    `json:"credits"`
	Kind          string `json:"kind"`
	TransactionID string `json:"transaction_id"`
	Description   string `json:"description"`
}

// PaymentsWebhook credits an account after the payment provider confirms a
// purchase or subscription renewal. Authenticity is a shared-secret header;
// the provider is configured with the same value out of band.
func (a *App) PaymentsWebhook(w http.ResponseWriter, r *http.Request) {
	if secret := a.Config.PaymentWebhookSecret; secret != "" {
		got := r.Header.Get("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			a.error(w, http.StatusUnauthorized, "unauthorized", "invalid webhook secret")
			return
		}
	}

	var req paymentWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.AccountID = strings.TrimSpace(req.AccountID)
	if req.AccountID == "" || req.Credits <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "account_id and positive credits are required")
		return
	}
	kind := domain.EntryKind(strings.TrimSpace(strings.ToLower(req.Kind)))
	if kind == "" {
		kind = domain.EntryKindPurchase
	}
	if kind != domain.EntryKindPurchase && kind != domain.EntryKindSubscription {
		a.error(w, http.StatusBadRequest, "bad_request", "kind must be purchase or subscription")
		return
	}
	description := req.Description
	if description == "" && req.TransactionID != "" {
		description = fmt.Sprintf("Payment %s", req.TransactionID)
	}

	entry, err := a.Ledger.Credit(r.Context(), req.AccountID, req.Credits, kind, description, "")
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		a.Logger.Error().Err(err).
			Str("account_id", req.AccountID).
			Str("transaction_id", req.TransactionID).
			Msg("payment credit failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to credit account")
		return
	}
	a.Logger.Info().
		Str("account_id", req.AccountID).
		Int("credits", req.Credits).
		Str("kind", string(kind)).
		Str("transaction_id", req.TransactionID).
		Msg("payment credited")
	a.json(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"balance": entry.BalanceAfter,
	})
}
