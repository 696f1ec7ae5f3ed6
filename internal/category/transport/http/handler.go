package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"sanita/internal/category"
	"sanita/internal/category/service"

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

// List returns the navigation tree: every category with its subcategories.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if categories == nil {
		categories = []*category.Category{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(categories)
}

type categoryRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug"`
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCategory(w, r)
	if !ok {
		return
	}

	c := &category.Category{Name: req.Name, Slug: req.Slug, Subcategories: []category.Subcategory{}}
	if err := h.Service.CreateCategory(r.Context(), c); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(c)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	req, ok := h.decodeCategory(w, r)
	if !ok {
		return
	}

	c := &category.Category{ID: id, Name: req.Name, Slug: req.Slug, Subcategories: []category.Subcategory{}}
	if err := h.Service.UpdateCategory(r.Context(), c); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteCategory(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type subcategoryRequest struct {
	CategoryID int64  `json:"categoryId" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Slug       string `json:"slug"`
}

func (h *Handler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	var req subcategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sub := &category.Subcategory{CategoryID: req.CategoryID, Name: req.Name, Slug: req.Slug}
	if err := h.Service.CreateSubcategory(r.Context(), sub); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sub)
}

func (h *Handler) UpdateSubcategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req subcategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sub := &category.Subcategory{ID: id, CategoryID: req.CategoryID, Name: req.Name, Slug: req.Slug}
	if err := h.Service.UpdateSubcategory(r.Context(), sub); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sub)
}

func (h *Handler) DeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteSubcategory(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeCategory(w http.ResponseWriter, r *http.Request) (categoryRequest, bool) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, category.ErrCategoryNotFound), errors.Is(err, category.ErrSubcategoryNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
