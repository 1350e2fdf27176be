package api

import (
	"log/slog"
	"net/http"

	"github.com/tasksvc/tasksvc-api/internal/api/shared"
	"github.com/tasksvc/tasksvc-api/internal/domain"
	"github.com/tasksvc/tasksvc-api/internal/service"
)

// TagHandler handles tag CRUD and statistics.
type TagHandler struct {
	tagService *service.TagService
	logger     *slog.Logger
}

// NewTagHandler creates a new TagHandler with the given dependencies.
func NewTagHandler(tagService *service.TagService, logger *slog.Logger) *TagHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TagHandler")
	}

	return &TagHandler{
		tagService: tagService,
		logger:     logger.With(slog.String("component", "tag_handler")),
	}
}

// Create handles POST /api/tags.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req TagRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnprocessableEntity,
			SanitizeValidationError(err), err)
		return
	}

	tag, err := h.tagService.Create(r.Context(), userID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create tag")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, tagToResponse(tag))
}

// Get handles GET /api/tags/{id}.
func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, tagID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	tag, err := h.tagService.Get(r.Context(), userID, tagID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load tag")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tagToResponse(tag))
}

// List handles GET /api/tags.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	page := parsePage(r)
	tags, total, err := h.tagService.List(r.Context(), userID, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tags")
		return
	}

	responses := make([]TagResponse, 0, len(tags))
	for _, tag := range tags {
		responses = append(responses, tagToResponse(tag))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TagListResponse{
		Tags:    responses,
		Total:   total,
		Page:    page.Number,
		PerPage: page.PerPage,
	})
}

// Update handles PUT /api/tags/{id}.
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, tagID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	var req TagRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnprocessableEntity,
			SanitizeValidationError(err), err)
		return
	}

	tag, err := h.tagService.Update(r.Context(), userID, tagID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update tag")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tagToResponse(tag))
}

// Delete handles DELETE /api/tags/{id}. Linked tasks lose the tag.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, tagID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.tagService.Delete(r.Context(), userID, tagID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete tag")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/tags/stats.
func (h *TagHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.tagService.Stats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute tag statistics")
		return
	}

	responses := make([]TagStatsResponse, 0, len(stats))
	for _, s := range stats {
		responses = append(responses, TagStatsResponse{
			ID:        s.TagID.String(),
			Name:      s.Name,
			TaskCount: s.TaskCount,
		})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// tagToResponse converts a domain.Tag to its wire shape.
func tagToResponse(tag *domain.Tag) TagResponse {
	return TagResponse{
		ID:        tag.ID.String(),
		Name:      tag.Name,
		CreatedAt: tag.CreatedAt,
	}
}
