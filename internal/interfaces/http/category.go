package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"contas/internal/domain/category"
	"contas/internal/shared/middleware"
)

// CategoryHandler exposes category operations over HTTP
type CategoryHandler struct {
	categories *category.Service
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories *category.Service) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// HandleCategories handles the category collection (GET list, POST create)
func (h *CategoryHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleListCategories(w, r, userID)
	case http.MethodPost:
		h.handleCreateCategory(w, r, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CategoryHandler) handleListCategories(w http.ResponseWriter, r *http.Request, userID int64) {
	categories, err := h.categories.ListCategories(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing categories for user %d: %v", userID, err)
		http.Error(w, "Failed to list categories", http.StatusInternalServerError)
		return
	}

	if categories == nil {
		categories = []*category.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) handleCreateCategory(w http.ResponseWriter, r *http.Request, userID int64) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c, err := h.categories.CreateCategory(r.Context(), category.CreateParams{
		UserID: userID,
		Name:   req.Name,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

// HandleCategoryByID handles operations on a single category (DELETE)
func (h *CategoryHandler) HandleCategoryByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	categoryID := r.PathValue("id")
	if categoryID == "" {
		http.Error(w, "Category ID is required", http.StatusBadRequest)
		return
	}

	if err := h.categories.DeleteCategory(r.Context(), categoryID, userID); err != nil {
		switch {
		case errors.Is(err, category.ErrCategoryNotFound):
			http.Error(w, "Category not found", http.StatusNotFound)
		case errors.Is(err, category.ErrForbidden):
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
