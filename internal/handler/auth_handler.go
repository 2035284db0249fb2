package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/hitoshi/taskman/internal/auth"
	"github.com/hitoshi/taskman/internal/metrics"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/validation"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, in model.Registration) (*auth.Session, error)
	Login(ctx context.Context, in model.Credentials) (*auth.Session, error)
}

// SessionCookies はセッションCookieの読み書きインターフェース。
type SessionCookies interface {
	Attach(w http.ResponseWriter, token string)
	Clear(w http.ResponseWriter)
	Read(r *http.Request) (string, bool)
}

// AuthHandler は登録・ログイン・ログアウト・現在ユーザー取得のHTTPハンドラー。
type AuthHandler struct {
	service   AuthServiceInterface
	validator *validation.Validator
	cookies   SessionCookies
	metrics   metrics.Recorder
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(
	service AuthServiceInterface,
	validator *validation.Validator,
	cookies SessionCookies,
	recorder metrics.Recorder,
) *AuthHandler {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &AuthHandler{
		service:   service,
		validator: validator,
		cookies:   cookies,
		metrics:   recorder,
	}
}

// Register はユーザーを登録し、セッションCookieを発行する。
// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	in, err := h.validator.DecodeRegistration(w, r)
	if err != nil {
		h.metrics.RecordAuthEvent(metrics.EventRegister, metrics.ResultFailure)
		handleServiceError(w, r, err)
		return
	}

	session, err := h.service.Register(r.Context(), in)
	if err != nil {
		h.metrics.RecordAuthEvent(metrics.EventRegister, authResult(err))
		handleServiceError(w, r, err)
		return
	}

	h.cookies.Attach(w, session.Token)
	h.metrics.RecordAuthEvent(metrics.EventRegister, metrics.ResultSuccess)
	writeOK(w, http.StatusOK, map[string]any{"user": toUserResponse(session.User)})
}

// Login は資格情報を検証し、セッションCookieを発行する。
// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	in, err := h.validator.DecodeCredentials(w, r)
	if err != nil {
		h.metrics.RecordAuthEvent(metrics.EventLogin, metrics.ResultFailure)
		handleServiceError(w, r, err)
		return
	}

	session, err := h.service.Login(r.Context(), in)
	if err != nil {
		h.metrics.RecordAuthEvent(metrics.EventLogin, authResult(err))
		handleServiceError(w, r, err)
		return
	}

	h.cookies.Attach(w, session.Token)
	h.metrics.RecordAuthEvent(metrics.EventLogin, metrics.ResultSuccess)
	writeOK(w, http.StatusOK, map[string]any{"user": toSessionUserResponse(session.User)})
}

// Logout はセッションCookieを失効させる。
// トークン自体はサーバー側で無効化しないため、有効期限まではCookie外で再利用できる。
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	h.metrics.RecordAuthEvent(metrics.EventLogout, metrics.ResultSuccess)
	writeOK(w, http.StatusOK, map[string]bool{"loggedOut": true})
}

// Me は現在の認証主体を返す。
// GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"user": claims})
}

// authResult は認証イベントのメトリクス用に結果を分類する。
func authResult(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeConflict {
		return metrics.ResultConflict
	}
	return metrics.ResultFailure
}
