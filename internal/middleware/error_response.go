package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/taskman/internal/model"
)

// SuccessBody は成功レスポンスの統一フォーマット。
type SuccessBody struct {
	OK   bool `json:"ok"`
	Data any  `json:"data"`
}

// ErrorBody は失敗レスポンスの統一フォーマット。
type ErrorBody struct {
	OK    bool        `json:"ok"`
	Error ErrorDetail `json:"error"`
}

// ErrorDetail は失敗レスポンスのerror要素。
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// WriteSuccessResponse は統一フォーマットで成功レスポンスを書き込む。
func WriteSuccessResponse(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, SuccessBody{OK: true, Data: data})
}

// WriteErrorResponse は統一フォーマットでHTTPエラーレスポンスを書き込む。
// ステータスコードはエラーコードから決まる。
func WriteErrorResponse(w http.ResponseWriter, apiErr *model.APIError) {
	writeJSON(w, apiErr.HTTPStatus(), ErrorBody{
		OK: false,
		Error: ErrorDetail{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		},
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, model.NewInternalError())
}

// WriteError はエラーを統一フォーマットで書き込む。
// *model.APIError以外のエラーはログに記録し、INTERNAL_ERRORとして返す。
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		WriteErrorResponse(w, apiErr)
		return
	}

	slog.Error("unhandled error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", chimw.GetReqID(r.Context())),
	)
	WriteInternalServerError(w)
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
