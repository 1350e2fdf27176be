package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tasksvc/tasksvc-api/internal/api/shared"
	"github.com/tasksvc/tasksvc-api/internal/domain"
	"github.com/tasksvc/tasksvc-api/internal/platform/logger"
	"github.com/tasksvc/tasksvc-api/internal/service"
	"github.com/tasksvc/tasksvc-api/internal/store"
)

// dueDateLayout is the wire format of task due dates. Due dates carry no
// time component.
const dueDateLayout = "2006-01-02"

// TaskHandler handles task CRUD, listing, statistics, and tag links.
type TaskHandler struct {
	taskService *service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService *service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnprocessableEntity,
			SanitizeValidationError(err), err)
		return
	}

	input, err := createRequestToInput(req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.Create(r.Context(), userID, input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Get(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// List handles GET /api/tasks with filter, sort, and pagination query
// parameters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	filter, err := parseTaskFilter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, total, err := h.taskService.List(r.Context(), userID, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, taskToResponse(task))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks:   responses,
		Total:   total,
		Page:    filter.Page.Number,
		PerPage: filter.Page.PerPage,
	})
}

// Update handles PUT /api/tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnprocessableEntity,
			SanitizeValidationError(err), err)
		return
	}

	input, err := updateRequestToInput(req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.Update(r.Context(), userID, taskID, input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/tasks/stats.
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.taskService.Stats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute task statistics")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskStatsResponse{
		Total:      stats.Total,
		Todo:       stats.Todo,
		InProgress: stats.InProgress,
		Done:       stats.Done,
		Overdue:    stats.Overdue,
		DueToday:   stats.DueToday,
	})
}

// AttachTag handles POST /api/tasks/{id}/tags/{tagID}.
func (h *TaskHandler) AttachTag(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	tagID, err := getPathUUID(r, "tagID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.taskService.AddTag(r.Context(), userID, taskID, tagID); err != nil {
		HandleAPIError(w, r, err, "Failed to attach tag")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DetachTag handles DELETE /api/tasks/{id}/tags/{tagID}.
func (h *TaskHandler) DetachTag(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	tagID, err := getPathUUID(r, "tagID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.taskService.RemoveTag(r.Context(), userID, taskID, tagID); err != nil {
		HandleAPIError(w, r, err, "Failed to detach tag")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// createRequestToInput converts a creation payload to a service input.
func createRequestToInput(req CreateTaskRequest) (service.TaskInput, error) {
	input := service.TaskInput{Title: &req.Title}

	if req.Description != "" {
		input.Description = &req.Description
	}
	if req.Status != "" {
		status := domain.TaskStatus(req.Status)
		input.Status = &status
	}
	if req.Priority != "" {
		priority := domain.TaskPriority(req.Priority)
		input.Priority = &priority
	}
	if req.DueDate != "" {
		dueDate, err := parseDueDate(req.DueDate)
		if err != nil {
			return service.TaskInput{}, err
		}
		input.DueDate = &dueDate
	}
	if req.CategoryID != "" {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return service.TaskInput{}, domain.NewValidationError(
				"category_id", "has invalid format", domain.ErrInvalidID)
		}
		input.CategoryID = &categoryID
	}

	tagIDs, err := parseTagIDs(req.TagIDs)
	if err != nil {
		return service.TaskInput{}, err
	}
	input.TagIDs = tagIDs

	return input, nil
}

// updateRequestToInput converts an update payload to a service input. An
// explicit empty string clears due_date or category_id.
func updateRequestToInput(req UpdateTaskRequest) (service.TaskInput, error) {
	input := service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
	}

	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		input.Priority = &priority
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			input.ClearDueDate = true
		} else {
			dueDate, err := parseDueDate(*req.DueDate)
			if err != nil {
				return service.TaskInput{}, err
			}
			input.DueDate = &dueDate
		}
	}
	if req.CategoryID != nil {
		if *req.CategoryID == "" {
			input.ClearCategory = true
		} else {
			categoryID, err := uuid.Parse(*req.CategoryID)
			if err != nil {
				return service.TaskInput{}, domain.NewValidationError(
					"category_id", "has invalid format", domain.ErrInvalidID)
			}
			input.CategoryID = &categoryID
		}
	}

	if req.TagIDs != nil {
		tagIDs, err := parseTagIDs(req.TagIDs)
		if err != nil {
			return service.TaskInput{}, err
		}
		if tagIDs == nil {
			tagIDs = []uuid.UUID{}
		}
		input.TagIDs = tagIDs
	}

	return input, nil
}

func parseDueDate(value string) (time.Time, error) {
	if t, err := time.Parse(dueDateLayout, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, domain.NewValidationError(
		"due_date", "must be a YYYY-MM-DD date", domain.ErrValidation)
}

func parseTagIDs(values []string) ([]uuid.UUID, error) {
	if len(values) == 0 {
		return nil, nil
	}
	tagIDs := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		tagID, err := uuid.Parse(value)
		if err != nil {
			return nil, domain.NewValidationError(
				"tag_ids", "has invalid format", domain.ErrInvalidID)
		}
		tagIDs = append(tagIDs, tagID)
	}
	return tagIDs, nil
}

// parseTaskFilter reads the list endpoint's query parameters.
func parseTaskFilter(r *http.Request) (store.TaskFilter, error) {
	q := r.URL.Query()
	filter := store.TaskFilter{
		Title: q.Get("title"),
		Page:  parsePage(r),
	}

	if v := q.Get("status"); v != "" {
		status := domain.TaskStatus(v)
		if !status.IsValid() {
			return store.TaskFilter{}, domain.NewValidationError(
				"status", "must be one of todo, in_progress, done", domain.ErrInvalidTaskStatus)
		}
		filter.Status = &status
	}
	if v := q.Get("priority"); v != "" {
		priority := domain.TaskPriority(v)
		if !priority.IsValid() {
			return store.TaskFilter{}, domain.NewValidationError(
				"priority", "must be one of low, medium, high", domain.ErrInvalidTaskPriority)
		}
		filter.Priority = &priority
	}
	if v := q.Get("category_id"); v != "" {
		categoryID, err := uuid.Parse(v)
		if err != nil {
			return store.TaskFilter{}, domain.NewValidationError(
				"category_id", "has invalid format", domain.ErrInvalidID)
		}
		filter.CategoryID = &categoryID
	}
	if v := q.Get("tag_id"); v != "" {
		tagID, err := uuid.Parse(v)
		if err != nil {
			return store.TaskFilter{}, domain.NewValidationError(
				"tag_id", "has invalid format", domain.ErrInvalidID)
		}
		filter.TagID = &tagID
	}
	if v := q.Get("overdue"); v != "" {
		overdue := v == "true" || v == "1"
		filter.Overdue = &overdue
		filter.Now = time.Now()
	}
	if v := q.Get("due_from"); v != "" {
		from, err := parseDueDate(v)
		if err != nil {
			return store.TaskFilter{}, domain.NewValidationError(
				"due_from", "must be a YYYY-MM-DD date", domain.ErrValidation)
		}
		filter.DueFrom = &from
	}
	if v := q.Get("due_to"); v != "" {
		to, err := parseDueDate(v)
		if err != nil {
			return store.TaskFilter{}, domain.NewValidationError(
				"due_to", "must be a YYYY-MM-DD date", domain.ErrValidation)
		}
		filter.DueTo = &to
	}

	switch v := q.Get("sort"); v {
	case "", store.TaskSortCreatedAt, store.TaskSortUpdatedAt,
		store.TaskSortDueDate, store.TaskSortPriority, store.TaskSortTitle:
		filter.SortBy = v
	default:
		return store.TaskFilter{}, domain.NewValidationError(
			"sort", "is not a sortable field", domain.ErrValidation)
	}
	filter.SortDescending = q.Get("order") != "asc"

	return filter, nil
}

// taskToResponse converts a domain.Task to its wire shape.
func taskToResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		Overdue:     task.IsOverdue(time.Now()),
		Tags:        []TagResponse{},
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if task.DueDate != nil {
		resp.DueDate = task.DueDate.Format(dueDateLayout)
	}
	if task.CategoryID != nil {
		resp.CategoryID = task.CategoryID.String()
	}
	if task.Category != nil {
		category := categoryToResponse(task.Category)
		resp.Category = &category
	}
	for _, tag := range task.Tags {
		resp.Tags = append(resp.Tags, tagToResponse(&tag))
	}

	return resp
}
