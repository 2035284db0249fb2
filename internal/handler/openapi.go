package handler

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.json
var openAPIDocument []byte

// ServeOpenAPI はOpenAPI 3.0.3のドキュメントをそのまま返す。
// このレスポンスのみ統一エンベロープを使わない。
// GET /api/v1/openapi
func ServeOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPIDocument)
}
