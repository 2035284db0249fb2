// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"net/http"
	"time"

	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
)

// userResponse はユーザー情報のAPIレスポンス。パスワードハッシュは含めない。
type userResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
}

// sessionUserResponse はログイン結果のユーザー情報。
type sessionUserResponse struct {
	ID    string     `json:"id"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// taskResponse はタスクのAPIレスポンス。説明が無い場合はnullを返す。
type taskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func toSessionUserResponse(u *model.User) sessionUserResponse {
	return sessionUserResponse{
		ID:    u.ID,
		Email: u.Email,
		Role:  u.Role,
	}
}

func toTaskResponse(t *model.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// writeOK は成功レスポンスを書き込む。
func writeOK(w http.ResponseWriter, statusCode int, data any) {
	middleware.WriteSuccessResponse(w, statusCode, data)
}

// handleServiceError はサービス層のエラーを統一フォーマットのレスポンスに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	middleware.WriteError(w, r, err)
}

// requireClaims はリクエストコンテキストから認証主体を取り出す。
// 取り出せない場合は401を書き込みfalseを返す。
func requireClaims(w http.ResponseWriter, r *http.Request) (*model.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		middleware.WriteErrorResponse(w, model.NewUnauthenticatedError())
		return nil, false
	}
	return claims, true
}
