package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/taskman/internal/model"
)

// UserServiceInterface は管理者ハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// List は全ユーザーを作成日時の降順で返す。
	List(ctx context.Context) ([]*model.User, error)
}

// AdminHandler は管理者向けのHTTPハンドラー。
// ルーターで管理者ゲートの内側に配置する。
type AdminHandler struct {
	service UserServiceInterface
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(service UserServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

// ListUsers は全ユーザーを返す。
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	writeOK(w, http.StatusOK, map[string]any{"users": resp})
}
