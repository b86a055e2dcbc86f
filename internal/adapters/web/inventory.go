package web

import (
	"errors"
	"net/http"

	"optics-backoffice/internal/app"
	"optics-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

// listLenses handles GET /api/lenses.
func (h *Handler) listLenses(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ListLenses(r.Context(), session)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Lenses)
}

// createLens handles POST /api/lenses.
// Body: { code, name, lens_type, material?, coating?, axis?, sale_price, reorder_level? }
func (h *Handler) createLens(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}

	var body struct {
		Code         string `json:"code"`
		Name         string `json:"name"`
		LensType     string `json:"lens_type"`
		Material     string `json:"material"`
		Coating      string `json:"coating"`
		Axis         int    `json:"axis"`
		SalePrice    string `json:"sale_price"`
		ReorderLevel int    `json:"reorder_level"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Code == "" || body.Name == "" {
		writeError(w, r, "code and name are required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	price := decimal.Zero
	if body.SalePrice != "" {
		var err error
		price, err = decimal.NewFromString(body.SalePrice)
		if err != nil {
			writeError(w, r, "invalid sale_price", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	result, err := h.svc.CreateLens(r.Context(), session, app.CreateLensRequest{
		Code:         body.Code,
		Name:         body.Name,
		LensType:     core.LensType(body.LensType),
		Material:     body.Material,
		Coating:      body.Coating,
		Axis:         body.Axis,
		SalePrice:    price,
		ReorderLevel: body.ReorderLevel,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Lens)
}

// powerInventory handles GET /api/lenses/{id}/powers.
func (h *Handler) powerInventory(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.GetPowerInventory(r.Context(), session, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Records)
}

// searchPowers handles GET /api/lenses/{id}/powers/search?sph=&cyl=&add=.
// Blank or non-numeric filter values are treated as absent.
func (h *Handler) searchPowers(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	result, err := h.svc.SearchPowers(r.Context(), session, id, q.Get("sph"), q.Get("cyl"), q.Get("add"))
	if err != nil {
		if errors.Is(err, core.ErrNoPowerInventory) {
			writeError(w, r, err.Error(), "NO_POWER_INVENTORY", http.StatusNotFound)
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Matches)
}

// receivePowerStock handles POST /api/lenses/{id}/powers/receive.
// Body: { power_key, quantity, unit_cost }
func (h *Handler) receivePowerStock(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var body struct {
		PowerKey string `json:"power_key"`
		Quantity int    `json:"quantity"`
		UnitCost string `json:"unit_cost"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.PowerKey == "" {
		writeError(w, r, "power_key is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if body.Quantity <= 0 {
		writeError(w, r, "quantity must be positive", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	cost := decimal.Zero
	if body.UnitCost != "" {
		var err error
		cost, err = decimal.NewFromString(body.UnitCost)
		if err != nil {
			writeError(w, r, "invalid unit_cost", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	result, err := h.svc.ReceivePowerStock(r.Context(), session, app.ReceivePowerRequest{
		LensID:   id,
		PowerKey: body.PowerKey,
		Quantity: body.Quantity,
		UnitCost: cost,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Record)
}

// selectPower handles POST /api/lenses/{id}/powers/select.
// Body: { power_key, eye, quantity }
func (h *Handler) selectPower(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var body struct {
		PowerKey string `json:"power_key"`
		Eye      string `json:"eye"`
		Quantity int    `json:"quantity"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.PowerKey == "" {
		writeError(w, r, "power_key is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if body.Quantity <= 0 {
		writeError(w, r, "quantity must be positive", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.SelectPower(r.Context(), session, app.SelectPowerRequest{
		LensID:   id,
		PowerKey: body.PowerKey,
		Eye:      core.EyeSelection(body.Eye),
		Quantity: body.Quantity,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Selection)
}

// listProducts handles GET /api/products?category=.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}

	var category *core.ProductCategory
	if raw := r.URL.Query().Get("category"); raw != "" {
		c := core.ProductCategory(raw)
		category = &c
	}

	result, err := h.svc.ListProducts(r.Context(), session, category)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Products)
}

// createProduct handles POST /api/products.
// Body: { category, code, name, brand?, sale_price, reorder_level? }
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}

	var body struct {
		Category     string `json:"category"`
		Code         string `json:"code"`
		Name         string `json:"name"`
		Brand        string `json:"brand"`
		SalePrice    string `json:"sale_price"`
		ReorderLevel int    `json:"reorder_level"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Code == "" || body.Name == "" {
		writeError(w, r, "code and name are required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	price := decimal.Zero
	if body.SalePrice != "" {
		var err error
		price, err = decimal.NewFromString(body.SalePrice)
		if err != nil {
			writeError(w, r, "invalid sale_price", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	result, err := h.svc.CreateProduct(r.Context(), session, app.CreateProductRequest{
		Category:     core.ProductCategory(body.Category),
		Code:         body.Code,
		Name:         body.Name,
		Brand:        body.Brand,
		SalePrice:    price,
		ReorderLevel: body.ReorderLevel,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Product)
}

// receiveProductStock handles POST /api/products/{id}/receive.
// Body: { quantity, unit_cost }
func (h *Handler) receiveProductStock(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var body struct {
		Quantity int    `json:"quantity"`
		UnitCost string `json:"unit_cost"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Quantity <= 0 {
		writeError(w, r, "quantity must be positive", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	cost := decimal.Zero
	if body.UnitCost != "" {
		var err error
		cost, err = decimal.NewFromString(body.UnitCost)
		if err != nil {
			writeError(w, r, "invalid unit_cost", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	result, err := h.svc.ReceiveProductStock(r.Context(), session, app.ReceiveProductRequest{
		ProductID: id,
		Quantity:  body.Quantity,
		UnitCost:  cost,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Product)
}

// reorderReport handles GET /api/reorder.
func (h *Handler) reorderReport(w http.ResponseWriter, r *http.Request) {
	session, ok := mustSession(w, r)
	if !ok {
		return
	}
	report, err := h.svc.GetReorderReport(r.Context(), session)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, report)
}
