package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"sanita/internal/catalog"
	"sanita/internal/catalog/service"

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

// List supports ?search=, ?subcategory= and ?sort=sold.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := catalog.ListFilter{
		Search:     r.URL.Query().Get("search"),
		SortBySold: r.URL.Query().Get("sort") == "sold",
	}
	if raw := r.URL.Query().Get("subcategory"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid subcategory", http.StatusBadRequest)
			return
		}
		filter.SubcategoryID = &id
	}

	products, err := h.Service.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []*catalog.Product{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(products)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

type productRequest struct {
	Name          string  `json:"name" validate:"required"`
	Slug          string  `json:"slug"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" validate:"required,gt=0"`
	Image         string  `json:"image"`
	Stock         int     `json:"stock" validate:"gte=0"`
	SubcategoryID *int64  `json:"subcategoryId"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p := &catalog.Product{
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		Price:         decimal.NewFromFloat(req.Price),
		Image:         req.Image,
		Stock:         req.Stock,
		SubcategoryID: req.SubcategoryID,
	}
	if err := h.Service.Create(r.Context(), p); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p := &catalog.Product{
		ID:            id,
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		Price:         decimal.NewFromFloat(req.Price),
		Image:         req.Image,
		Stock:         req.Stock,
		SubcategoryID: req.SubcategoryID,
	}
	if err := h.Service.Update(r.Context(), p); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidPrice):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
