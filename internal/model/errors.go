package model

import (
	"fmt"
	"net/http"
)

// APIError は統一エラーエンベロープに載せるエラーを表す。
// サービス層はこの型を返し、ハンドラーはerrors.Asで取り出してHTTPステータスに変換する。
type APIError struct {
	Code    string // エラーコード
	Message string // 利用者向けメッセージ
	Details any    // 付加情報（バリデーション違反の一覧など）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnavailable  = "SERVICE_UNAVAILABLE"
)

// HTTPStatus はエラーコードに対応するHTTPステータスコードを返す。
// 未知のコードは500として扱う。
func (e *APIError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Violation はフィールド単位のバリデーション違反を表す。
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// 違反種別
const (
	ViolationRequired      = "required"
	ViolationTooShort      = "too_short"
	ViolationTooBig        = "too_big"
	ViolationInvalidFormat = "invalid_format"
	ViolationInvalidEnum   = "invalid_enum_value"
	ViolationInvalidType   = "invalid_type"
	ViolationInvalidJSON   = "invalid_json"
	ViolationInvalid       = "invalid"
)

// NewValidationError は入力値不正エラーを生成する。
func NewValidationError(violations []Violation) *APIError {
	return &APIError{
		Code:    ErrCodeValidation,
		Message: "Invalid input",
		Details: violations,
	}
}

// NewUnauthenticatedError はセッションが無い・無効な場合のエラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: "Not authenticated",
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// ユーザー不在とパスワード不一致で同一のエラーを返し、アカウントの存在を推測させない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: "Invalid credentials",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:    ErrCodeForbidden,
		Message: "Admin only",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
// 他ユーザー所有のタスクに対しても同じエラーを返す。
func NewTaskNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: "Task not found",
	}
}

// NewNotFoundError は汎用の未検出エラーを生成する。
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: message,
	}
}

// NewEmailConflictError はメールアドレス重複エラーを生成する。
func NewEmailConflictError() *APIError {
	return &APIError{
		Code:    ErrCodeConflict,
		Message: "Email already registered",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:    ErrCodeInternal,
		Message: "Unexpected error",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:    ErrCodeRateLimited,
		Message: "Too many requests",
	}
}

// NewUnavailableError は依存先（DB等）に接続できない場合のエラーを生成する。
func NewUnavailableError() *APIError {
	return &APIError{
		Code:    ErrCodeUnavailable,
		Message: "Service unavailable",
	}
}
