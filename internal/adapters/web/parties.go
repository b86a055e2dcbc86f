package web

import (
	"net/http"
	"strings"

	"optics-backoffice/internal/app"
	"optics-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

// writeServiceError maps a service-layer error onto the JSON error shape.
// "not found" errors become 404; stock overruns and payment caps become 422
// with the service's descriptive message; everything else is surfaced as 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		writeError(w, r, msg, "NOT_FOUND", http.StatusNotFound)
	case strings.Contains(msg, "available") || strings.Contains(msg, "exceeds") || strings.Contains(msg, "remain"):
		writeError(w, r, msg, "UNPROCESSABLE", http.StatusUnprocessableEntity)
	default:
		writeError(w, r, msg, "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// listCustomers handles GET /api/customers.
func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	h.listParties(w, r, core.PartyCustomer)
}

// listVendors handles GET /api/vendors.
func (h *Handler) listVendors(w http.ResponseWriter, r *http.Request) {
	h.listParties(w, r, core.PartyVendor)
}

func (h *Handler) listParties(w http.ResponseWriter, r *http.Request, partyType core.PartyType) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ListParties(r.Context(), session, partyType)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Parties)
}

// createCustomer handles POST /api/customers.
func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	h.createParty(w, r, core.PartyCustomer)
}

// createVendor handles POST /api/vendors.
func (h *Handler) createVendor(w http.ResponseWriter, r *http.Request) {
	h.createParty(w, r, core.PartyVendor)
}

// createParty handles both directions.
// Body: { code, name, phone?, email?, address?, opening_balance? }
func (h *Handler) createParty(w http.ResponseWriter, r *http.Request, partyType core.PartyType) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}

	var body struct {
		Code           string `json:"code"`
		Name           string `json:"name"`
		Phone          string `json:"phone"`
		Email          string `json:"email"`
		Address        string `json:"address"`
		OpeningBalance string `json:"opening_balance"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Code == "" || body.Name == "" {
		writeError(w, r, "code and name are required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	opening := decimal.Zero
	if body.OpeningBalance != "" {
		var err error
		opening, err = decimal.NewFromString(body.OpeningBalance)
		if err != nil {
			writeError(w, r, "invalid opening_balance", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	result, err := h.svc.CreateParty(r.Context(), session, app.CreatePartyRequest{
		Type:           partyType,
		Code:           body.Code,
		Name:           body.Name,
		Phone:          body.Phone,
		Email:          body.Email,
		Address:        body.Address,
		OpeningBalance: opening,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Party)
}

// getParty handles GET /api/customers/{id} and GET /api/vendors/{id}.
func (h *Handler) getParty(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.GetParty(r.Context(), session, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Party)
}

// partyBalance handles GET /api/customers/{id}/balance and
// GET /api/vendors/{id}/balance.
func (h *Handler) partyBalance(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.GetPartyBalance(r.Context(), session, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// partyStatement handles GET /api/customers/{id}/statement and
// GET /api/vendors/{id}/statement.
func (h *Handler) partyStatement(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.GetPartyStatement(r.Context(), session, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Statement)
}
