package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"optics-backoffice/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{svc: svc, jwtSecret: jwtSecret}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// Health and auth are public.
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		// Customers and vendors share the party handlers.
		r.Get("/api/customers", h.listCustomers)
		r.Post("/api/customers", h.createCustomer)
		r.Get("/api/customers/{id}", h.getParty)
		r.Get("/api/customers/{id}/balance", h.partyBalance)
		r.Get("/api/customers/{id}/statement", h.partyStatement)
		r.Get("/api/vendors", h.listVendors)
		r.Post("/api/vendors", h.createVendor)
		r.Get("/api/vendors/{id}", h.getParty)
		r.Get("/api/vendors/{id}/balance", h.partyBalance)
		r.Get("/api/vendors/{id}/statement", h.partyStatement)

		// Lens catalog and power inventory.
		r.Get("/api/lenses", h.listLenses)
		r.Post("/api/lenses", h.createLens)
		r.Get("/api/lenses/{id}/powers", h.powerInventory)
		r.Get("/api/lenses/{id}/powers/search", h.searchPowers)
		r.Post("/api/lenses/{id}/powers/receive", h.receivePowerStock)
		r.Post("/api/lenses/{id}/powers/select", h.selectPower)

		// Frames and accessories.
		r.Get("/api/products", h.listProducts)
		r.Post("/api/products", h.createProduct)
		r.Post("/api/products/{id}/receive", h.receiveProductStock)

		// Sales invoices.
		r.Get("/api/invoices", h.listInvoices)
		r.Post("/api/invoices", h.createInvoice)
		r.Get("/api/invoices/{id}", h.getInvoice)
		r.Post("/api/invoices/{id}/payment", h.invoicePayment)
		r.Post("/api/invoices/{id}/return", h.invoiceReturn)

		// Vendor purchases.
		r.Get("/api/purchases", h.listPurchases)
		r.Post("/api/purchases", h.createPurchase)
		r.Get("/api/purchases/{id}", h.getPurchase)
		r.Post("/api/purchases/{id}/payment", h.purchasePayment)

		// Manual ledger transactions.
		r.Get("/api/transactions", h.listTransactions)
		r.Post("/api/transactions", h.recordTransaction)

		// Low-stock report.
		r.Get("/api/reorder", h.reorderReport)
	})

	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// urlID extracts the numeric {id} URL parameter. Writes a 400 and returns
// false when the parameter is not a positive integer.
func urlID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid id parameter", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// queryIntPtr parses an optional integer query parameter, nil when absent.
func queryIntPtr(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return &v
	}
	return nil
}

// decodeJSON decodes the request body into v and returns false + writes an
// appropriate error response on failure. Returns HTTP 413 when the body
// exceeds the RequestBodyLimit; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// mustSession returns the request session; RequireAuth guarantees presence on
// protected routes, so a miss means a routing bug.
func mustSession(w http.ResponseWriter, r *http.Request) (app.Session, bool) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		writeError(w, r, "not authenticated", "UNAUTHORIZED", http.StatusUnauthorized)
	}
	return session, ok
}
