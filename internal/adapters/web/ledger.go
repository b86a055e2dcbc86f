package web

import (
	"net/http"

	"optics-backoffice/internal/app"
	"optics-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

// listTransactions handles GET /api/transactions?party_id=.
func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ListTransactions(r.Context(), session, queryIntPtr(r, "party_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Transactions)
}

// recordTransaction handles POST /api/transactions.
// Body: { party_id, type, amount, date?, notes? }
func (h *Handler) recordTransaction(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}

	var body struct {
		PartyID int    `json:"party_id"`
		Type    string `json:"type"`
		Amount  string `json:"amount"`
		Date    string `json:"date"`
		Notes   string `json:"notes"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.PartyID <= 0 {
		writeError(w, r, "party_id is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil || !amount.IsPositive() {
		writeError(w, r, "amount must be a positive number", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.RecordTransaction(r.Context(), session, app.TransactionRequest{
		PartyID: body.PartyID,
		Type:    core.TransactionType(body.Type),
		Amount:  amount,
		Date:    body.Date,
		Notes:   body.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Transaction)
}
