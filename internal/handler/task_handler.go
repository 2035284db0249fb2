package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/validation"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	List(ctx context.Context, userID string) ([]*model.Task, error)
	Create(ctx context.Context, userID string, in model.NewTask) (*model.Task, error)
	Get(ctx context.Context, userID, taskID string) (*model.Task, error)
	Update(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
}

// TaskHandler はタスク管理のHTTPハンドラー。
// すべての操作は認証済みユーザー自身のタスクに限定される。
type TaskHandler struct {
	service   TaskServiceInterface
	validator *validation.Validator
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface, validator *validation.Validator) *TaskHandler {
	return &TaskHandler{
		service:   service,
		validator: validator,
	}
}

// ListTasks はタスク一覧を新しい順に返す。
// GET /api/v1/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	tasks, err := h.service.List(r.Context(), claims.Subject)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		resp[i] = toTaskResponse(t)
	}
	writeOK(w, http.StatusOK, map[string]any{"tasks": resp})
}

// CreateTask はタスクを作成する。
// POST /api/v1/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	in, err := h.validator.DecodeNewTask(w, r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	task, err := h.service.Create(r.Context(), claims.Subject, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"task": toTaskResponse(task)})
}

// GetTask はタスクを1件返す。
// GET /api/v1/tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), claims.Subject, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"task": toTaskResponse(task)})
}

// UpdateTask はタスクを部分更新する。
// ボディの検証は所有者の確認より先に行う。
// PATCH /api/v1/tasks/{id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	patch, err := h.validator.DecodeTaskPatch(w, r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	task, err := h.service.Update(r.Context(), claims.Subject, chi.URLParam(r, "id"), patch)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"task": toTaskResponse(task)})
}

// DeleteTask はタスクを削除する。
// DELETE /api/v1/tasks/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), claims.Subject, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]bool{"deleted": true})
}
