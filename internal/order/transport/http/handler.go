package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"sanita/internal/order"
	"sanita/internal/order/service"
	"sanita/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
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

type createItemRequest struct {
	ProductID int64 `json:"productId" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	CustomerName    string              `json:"customerName" validate:"required"`
	CustomerPhone   string              `json:"customerPhone" validate:"required"`
	CustomerAddress string              `json:"customerAddress" validate:"required"`
	Note            string              `json:"note"`
	SaleCode        string              `json:"saleCode"`
	Items           []createItemRequest `json:"items" validate:"required,min=1,dive"`
}

// Create accepts guest and authenticated checkout. Prices come from the
// catalog on the server; item prices in the request body do not exist.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	input := service.CreateInput{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		Note:            req.Note,
		SaleCode:        req.SaleCode,
	}
	if userID, ok := middleware.UserID(r.Context()); ok {
		input.UserID = &userID
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, service.CreateItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	o, err := h.Service.Create(r.Context(), input)
	if err != nil {
		var saleErr *service.SaleRejectedError
		switch {
		case errors.As(err, &saleErr):
			http.Error(w, saleErr.Message, http.StatusBadRequest)
		case errors.Is(err, service.ErrEmptyOrder),
			errors.Is(err, service.ErrInvalidQuantity),
			errors.Is(err, service.ErrUnknownProduct):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(o)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	o, err := h.Service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(o)
}

// ListMine returns the authenticated user's orders.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	orders, err := h.Service.ListByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Service.ListAll(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Force  bool   `json:"force"`
}

// UpdateStatus is the administrative transition endpoint. Force bypasses the
// transition table and is logged as a deliberate override.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	o, err := h.Service.UpdateStatus(r.Context(), id, status, req.Force)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			http.Error(w, "order not found", http.StatusNotFound)
		case errors.Is(err, service.ErrInvalidTransition):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, service.ErrUnknownStatus):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(o)
}
