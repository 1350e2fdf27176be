package api

import (
	"log/slog"
	"net/http"

	"github.com/tasksvc/tasksvc-api/internal/api/shared"
	"github.com/tasksvc/tasksvc-api/internal/domain"
	"github.com/tasksvc/tasksvc-api/internal/service"
)

// CategoryHandler handles category CRUD and statistics.
type CategoryHandler struct {
	categoryService *service.CategoryService
	logger          *slog.Logger
}

// NewCategoryHandler creates a new CategoryHandler with the given dependencies.
func NewCategoryHandler(
	categoryService *service.CategoryService,
	logger *slog.Logger,
) *CategoryHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CategoryHandler")
	}

	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger.With(slog.String("component", "category_handler")),
	}
}

// Create handles POST /api/categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnprocessableEntity,
			SanitizeValidationError(err), err)
		return
	}

	category, err := h.categoryService.Create(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create category")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, categoryToResponse(category))
}

// Get handles GET /api/categories/{id}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, categoryID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	category, err := h.categoryService.Get(r.Context(), userID, categoryID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load category")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, categoryToResponse(category))
}

// List handles GET /api/categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	page := parsePage(r)
	categories, total, err := h.categoryService.List(r.Context(), userID, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list categories")
		return
	}

	responses := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		responses = append(responses, categoryToResponse(category))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CategoryListResponse{
		Categories: responses,
		Total:      total,
		Page:       page.Number,
		PerPage:    page.PerPage,
	})
}

// Update handles PUT /api/categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, categoryID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnprocessableEntity,
			SanitizeValidationError(err), err)
		return
	}

	category, err := h.categoryService.Update(
		r.Context(), userID, categoryID, req.Name, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update category")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, categoryToResponse(category))
}

// Delete handles DELETE /api/categories/{id}. Tasks in the category survive
// uncategorized.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, categoryID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.categoryService.Delete(r.Context(), userID, categoryID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete category")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/categories/stats.
func (h *CategoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.categoryService.Stats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute category statistics")
		return
	}

	responses := make([]CategoryStatsResponse, 0, len(stats))
	for _, s := range stats {
		responses = append(responses, CategoryStatsResponse{
			ID:         s.CategoryID.String(),
			Name:       s.Name,
			Total:      s.Total,
			Todo:       s.Todo,
			InProgress: s.InProgress,
			Done:       s.Done,
		})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// categoryToResponse converts a domain.Category to its wire shape.
func categoryToResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID.String(),
		Name:        category.Name,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}
