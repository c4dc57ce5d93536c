package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/oriontask/orion-api/internal/api/shared"
	"github.com/oriontask/orion-api/internal/domain"
	"github.com/oriontask/orion-api/internal/platform/logger"
	"github.com/oriontask/orion-api/internal/service"
	"github.com/oriontask/orion-api/internal/store"
)

// TaskHandler handles task-related API requests.
type TaskHandler struct {
	taskService *service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService *service.TaskService, logger *slog.Logger) *TaskHandler {
	if taskService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("task service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateTaskRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	task, err := h.taskService.Create(r.Context(), userID, service.CreateTaskInput{
		DharmaID:    req.DharmaID,
		Title:       req.Title,
		Description: req.Description,
		KarmaType:   domain.KarmaType(req.KarmaType),
		EffortLevel: domain.EffortLevel(req.EffortLevel),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task))
}

// UpdateTask handles PUT /tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	input := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Hidden:      req.Hidden,
	}
	if req.KarmaType != nil {
		karma := domain.KarmaType(*req.KarmaType)
		input.KarmaType = &karma
	}
	if req.EffortLevel != nil {
		effort := domain.EffortLevel(*req.EffortLevel)
		input.EffortLevel = &effort
	}

	task, err := h.taskService.Update(r.Context(), userID, taskID, input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTasks handles GET /tasks. Optional query parameters: dharma_id, status,
// offset, limit.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var filter store.TaskFilter
	if raw := r.URL.Query().Get("dharma_id"); raw != "" {
		dharmaID, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid dharma_id")
			return
		}
		filter.DharmaID = &dharmaID
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseTaskStatus(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid status")
			return
		}
		filter.Status = &status
	}

	page := parsePage(r)

	tasks, err := h.taskService.List(r.Context(), userID, filter, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskListResponse(tasks))
}

// MoveToNow handles POST /tasks/{id}/now.
func (h *TaskHandler) MoveToNow(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	task, err := h.taskService.MoveToNow(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to move task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// ChangeStatus handles POST /tasks/{id}/status.
func (h *TaskHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	status, err := domain.ParseTaskStatus(req.Status)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.ChangeStatus(r.Context(), userID, taskID, status)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to change task status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// SnoozeTask handles POST /tasks/{id}/snooze.
func (h *TaskHandler) SnoozeTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	task, err := h.taskService.SnoozeTask(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to snooze task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// MarkAsDone handles POST /tasks/{id}/done.
func (h *TaskHandler) MarkAsDone(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	task, err := h.taskService.MarkAsDone(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// parsePage reads offset and limit query parameters; invalid or absent
// values fall back to defaults enforced by the service.
func parsePage(r *http.Request) store.Page {
	var page store.Page
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			page.Offset = v
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			page.Limit = v
		}
	}
	return page
}
