// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hitoshi/taskman/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// claimsContextKey はリクエストコンテキストに認証主体を格納するためのキー。
var claimsContextKey = contextKey("claims")

// TokenVerifier はセッショントークンの検証に必要なインターフェース。
type TokenVerifier interface {
	Verify(token string) (*model.Claims, error)
}

// TokenReader はリクエストからセッショントークンを取り出すインターフェース。
type TokenReader interface {
	Read(r *http.Request) (string, bool)
}

// NewSessionMiddleware はHTTP Only Cookieからセッショントークンを読み取り、
// 有効性を検証するミドルウェアを返す。
// 認証主体をリクエストコンテキストに注入する。
// 未認証リクエストには401 UNAUTHORIZEDを返す。
func NewSessionMiddleware(verifier TokenVerifier, reader TokenReader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := Authenticate(r, verifier, reader)
			if !ok {
				WriteErrorResponse(w, model.NewUnauthenticatedError())
				return
			}

			annotateUserID(r.Context(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

// NewAdminMiddleware はADMINロール以外のリクエストに403 FORBIDDENを返すミドルウェアを返す。
// NewSessionMiddlewareの後に配置する。認証主体が無い場合は401を返す。
func NewAdminMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				WriteErrorResponse(w, model.NewUnauthenticatedError())
				return
			}
			if claims.Role != model.RoleAdmin {
				WriteErrorResponse(w, model.NewForbiddenError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate はリクエストのCookieを検証し認証主体を返す。
// Cookieが無い場合とトークンが不正な場合を区別しない。
func Authenticate(r *http.Request, verifier TokenVerifier, reader TokenReader) (*model.Claims, bool) {
	token, ok := reader.Read(r)
	if !ok {
		return nil, false
	}
	claims, err := verifier.Verify(token)
	if err != nil || claims == nil {
		return nil, false
	}
	return claims, true
}

// ClaimsFromContext はリクエストコンテキストから認証主体を取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func ClaimsFromContext(ctx context.Context) (*model.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*model.Claims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return claims.Subject, nil
}

// ContextWithClaims はコンテキストに認証主体を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithClaims(ctx context.Context, claims *model.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}
