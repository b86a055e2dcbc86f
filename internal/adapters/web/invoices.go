package web

import (
	"fmt"
	"net/http"

	"optics-backoffice/internal/app"
	"optics-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

// listInvoices handles GET /api/invoices?customer_id=.
func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ListInvoices(r.Context(), session, queryIntPtr(r, "customer_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoices)
}

// getInvoice handles GET /api/invoices/{id}.
func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetInvoice(r.Context(), session, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}

// createInvoice handles POST /api/invoices.
// Body: { customer_id, invoice_date?, notes?, amount_paid?,
//         lines: [{kind, lens_id?, power_key?, eye?, product_id?, description?, quantity, unit_price?}] }
func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}

	var body struct {
		CustomerID  int    `json:"customer_id"`
		InvoiceDate string `json:"invoice_date"`
		Notes       string `json:"notes"`
		AmountPaid  string `json:"amount_paid"`
		Lines       []struct {
			Kind        string `json:"kind"`
			LensID      int    `json:"lens_id"`
			PowerKey    string `json:"power_key"`
			Eye         string `json:"eye"`
			ProductID   int    `json:"product_id"`
			Description string `json:"description"`
			Quantity    int    `json:"quantity"`
			UnitPrice   string `json:"unit_price"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.CustomerID <= 0 {
		writeError(w, r, "customer_id is required", "BAD_REQUEST", http.StatusBadRequest)
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

	req := app.CreateInvoiceRequest{
		CustomerID:  body.CustomerID,
		InvoiceDate: body.InvoiceDate,
		Notes:       body.Notes,
		AmountPaid:  paid,
	}
	for i, l := range body.Lines {
		if l.Quantity <= 0 {
			writeError(w, r, fmt.Sprintf("line %d: quantity must be positive", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		price := decimal.Zero
		if l.UnitPrice != "" {
			var err error
			price, err = decimal.NewFromString(l.UnitPrice)
			if err != nil {
				writeError(w, r, fmt.Sprintf("line %d: invalid unit_price", i+1), "BAD_REQUEST", http.StatusBadRequest)
				return
			}
		}
		req.Lines = append(req.Lines, app.InvoiceLineRequest{
			Kind:        core.InvoiceLineKind(l.Kind),
			LensID:      l.LensID,
			PowerKey:    l.PowerKey,
			Eye:         core.EyeSelection(l.Eye),
			ProductID:   l.ProductID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   price,
		})
	}

	result, err := h.svc.CreateInvoice(r.Context(), session, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Invoice)
}

// invoicePayment handles POST /api/invoices/{id}/payment.
// Body: { amount }
func (h *Handler) invoicePayment(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.svc.RecordInvoicePayment(r.Context(), session, app.PaymentRequest{
		DocumentID: id,
		Amount:     amount,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}

// invoiceReturn handles POST /api/invoices/{id}/return.
// Body: { line_id, quantity }
func (h *Handler) invoiceReturn(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var body struct {
		LineID   int `json:"line_id"`
		Quantity int `json:"quantity"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.LineID <= 0 || body.Quantity <= 0 {
		writeError(w, r, "line_id and quantity must be positive", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.ReturnInvoiceLine(r.Context(), session, app.ReturnRequest{
		InvoiceID: id,
		LineID:    body.LineID,
		Quantity:  body.Quantity,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}
