package web

import (
	"fmt"
	"net/http"

	"optics-backoffice/internal/app"
	"optics-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

// listPurchases handles GET /api/purchases?vendor_id=.
func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ListPurchases(r.Context(), session, queryIntPtr(r, "vendor_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Purchases)
}

// getPurchase handles GET /api/purchases/{id}.
func (h *Handler) getPurchase(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetPurchase(r.Context(), session, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Purchase)
}

// createPurchase handles POST /api/purchases.
// Body: { vendor_id, purchase_date?, notes?, amount_paid?,
//         lines: [{kind, lens_id?, power_key?, product_id?, description?, quantity, unit_cost}] }
func (h *Handler) createPurchase(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}

	var body struct {
		VendorID     int    `json:"vendor_id"`
		PurchaseDate string `json:"purchase_date"`
		Notes        string `json:"notes"`
		AmountPaid   string `json:"amount_paid"`
		Lines        []struct {
			Kind        string `json:"kind"`
			LensID      int    `json:"lens_id"`
			PowerKey    string `json:"power_key"`
			ProductID   int    `json:"product_id"`
			Description string `json:"description"`
			Quantity    int    `json:"quantity"`
			UnitCost    string `json:"unit_cost"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.VendorID <= 0 {
		writeError(w, r, "vendor_id is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if len(body.Lines) == 0 {
		writeError(w, r, "at least one line is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	paid := decimal.Zero
	if body.AmountPaid != "" {
		var err error
		paid, err = decimal.NewFromString(body.AmountPaid)
		if err != nil {
			writeError(w, r, "invalid amount_paid", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	req := app.CreatePurchaseRequest{
		VendorID:     body.VendorID,
		PurchaseDate: body.PurchaseDate,
		Notes:        body.Notes,
		AmountPaid:   paid,
	}
	for i, l := range body.Lines {
		if l.Quantity <= 0 {
			writeError(w, r, fmt.Sprintf("line %d: quantity must be positive", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		cost, err := decimal.NewFromString(l.UnitCost)
		if err != nil {
			writeError(w, r, fmt.Sprintf("line %d: invalid unit_cost", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.Lines = append(req.Lines, app.PurchaseLineRequest{
			Kind:        core.InvoiceLineKind(l.Kind),
			LensID:      l.LensID,
			PowerKey:    l.PowerKey,
			ProductID:   l.ProductID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitCost:    cost,
		})
	}

	result, err := h.svc.CreatePurchase(r.Context(), session, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Purchase)
}

// purchasePayment handles POST /api/purchases/{id}/payment.
// Body: { amount }
func (h *Handler) purchasePayment(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var body struct {
		Amount string `json:"amount"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil || !amount.IsPositive() {
		writeError(w, r, "amount must be a positive number", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.RecordPurchasePayment(r.Context(), session, app.PaymentRequest{
		DocumentID: id,
		Amount:     amount,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Purchase)
}
