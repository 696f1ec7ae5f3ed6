package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"sanita/internal/payment"
	"sanita/internal/payment/service"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{Service: svc}
}

// Webhook is the SePay callback endpoint. It always answers 200: a non-2xx
// response would make the gateway retry notifications that can never resolve.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	var ev payment.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	result, err := h.Service.ProcessWebhook(r.Context(), ev)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Status serves the client-side polling loop on the checkout page.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	paid, status, err := h.Service.Status(r.Context(), orderID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"paid":   paid,
		"status": status,
	})
}

type createQRRequest struct {
	OrderID int64 `json:"orderId"`
}

func (h *Handler) CreateQR(w http.ResponseWriter, r *http.Request) {
	var req createQRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	info, err := h.Service.QR(r.Context(), req.OrderID)
	if err != nil {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

// ListEvents exposes the payment audit trail for an order.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	events, err := h.Service.EventsForOrder(r.Context(), orderID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []*payment.Event{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

// ConfirmManual lets an operator settle an order whose transfer the webhook
// never matched.
func (h *Handler) ConfirmManual(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	result, err := h.Service.ConfirmManual(r.Context(), orderID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
