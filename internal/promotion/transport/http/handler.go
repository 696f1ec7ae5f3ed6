package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"sanita/internal/promotion"
	"sanita/internal/promotion/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Handler struct {
	Service  *service.Service
	validate *validator.Validate
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Service:  svc,
		validate: validator.New(),
	}
}

type applyRequest struct {
	Code       string          `json:"code" validate:"required"`
	OrderTotal decimal.Decimal `json:"orderTotal"`
}

// Apply evaluates a sale code against an order total. Rejections are soft:
// the response is always 200 with valid=false and a display message, because
// a bad code is expected shopper input, not a request error.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.OrderTotal.IsNegative() {
		http.Error(w, "orderTotal must not be negative", http.StatusBadRequest)
		return
	}

	result, err := h.Service.Evaluate(r.Context(), req.Code, req.OrderTotal)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if !result.Valid {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"valid": false,
			"error": result.Message,
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"valid": true,
		"sale":  result.Sale,
	})
}

type createSaleRequest struct {
	Code        string   `json:"code" validate:"required"`
	Discount    float64  `json:"discount" validate:"required,gt=0"`
	Type        string   `json:"type"`
	MinOrder    float64  `json:"minOrder" validate:"gte=0"`
	MaxDiscount *float64 `json:"maxDiscount"`
	UsageLimit  int      `json:"usageLimit" validate:"gte=0"`
	ExpiresAt   *string  `json:"expiresAt"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	kind := promotion.KindPercent
	if req.Type != "" {
		parsed, err := promotion.ParseKind(req.Type)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		kind = parsed
	}

	sale := &promotion.Sale{
		Code:       req.Code,
		Discount:   decimal.NewFromFloat(req.Discount),
		Kind:       kind,
		MinOrder:   decimal.NewFromFloat(req.MinOrder),
		UsageLimit: req.UsageLimit,
	}

	if req.MaxDiscount != nil {
		sale.MaxDiscount = decimal.NewNullDecimal(decimal.NewFromFloat(*req.MaxDiscount))
	}

	if req.ExpiresAt != nil {
		expiresAt, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			http.Error(w, "invalid expiresAt, expected RFC3339", http.StatusBadRequest)
			return
		}
		sale.ExpiresAt = &expiresAt
	}

	created, err := h.Service.CreateSale(r.Context(), sale)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Service.ListSales(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sales)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var sale promotion.Sale
	if err := json.NewDecoder(r.Body).Decode(&sale); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	sale.ID = id

	if err := h.Service.UpdateSale(r.Context(), &sale); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sale)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeactivateSale(r.Context(), id); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteSale(r.Context(), id); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
