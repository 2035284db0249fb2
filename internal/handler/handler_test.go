package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskman/internal/auth"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	registerFn func(ctx context.Context, in model.Registration) (*auth.Session, error)
	loginFn    func(ctx context.Context, in model.Credentials) (*auth.Session, error)
}

func (m *mockAuthService) Register(ctx context.Context, in model.Registration) (*auth.Session, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, in model.Credentials) (*auth.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, in)
	}
	return nil, nil
}

type mockTaskService struct {
	listFn   func(ctx context.Context, userID string) ([]*model.Task, error)
	createFn func(ctx context.Context, userID string, in model.NewTask) (*model.Task, error)
	getFn    func(ctx context.Context, userID, taskID string) (*model.Task, error)
	updateFn func(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error)
	deleteFn func(ctx context.Context, userID, taskID string) error
}

func (m *mockTaskService) List(ctx context.Context, userID string) ([]*model.Task, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockTaskService) Create(ctx context.Context, userID string, in model.NewTask) (*model.Task, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, in)
	}
	return nil, nil
}

func (m *mockTaskService) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, taskID)
	}
	return nil, nil
}

func (m *mockTaskService) Update(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, taskID, patch)
	}
	return nil, nil
}

func (m *mockTaskService) Delete(ctx context.Context, userID, taskID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, taskID)
	}
	return nil
}

type mockUserService struct {
	listFn func(ctx context.Context) ([]*model.User, error)
}

func (m *mockUserService) List(ctx context.Context) ([]*model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

// mockCookies はトークンの受け渡しを記録するSessionCookiesのモック。
type mockCookies struct {
	attached string
	cleared  bool
}

func (m *mockCookies) Attach(_ http.ResponseWriter, token string) { m.attached = token }
func (m *mockCookies) Clear(_ http.ResponseWriter)                { m.cleared = true }
func (m *mockCookies) Read(r *http.Request) (string, bool) {
	c, err := r.Cookie(auth.SessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// authEventRecorder は認証イベントだけを記録するmetrics.Recorder。
type authEventRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *authEventRecorder) RecordRequest(string, string, int, time.Duration) {}
func (r *authEventRecorder) RecordRateLimited(string)                         {}
func (r *authEventRecorder) RecordAuthEvent(event, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event+":"+result)
}

func (r *authEventRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// --- ヘルパー ---

// envelope はレスポンスのエンベロープをテスト用にデコードした形。
type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details []model.Violation `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("failed to decode envelope: %v\nraw: %s", err, body)
	}
	return env
}

// decodeData はエンベロープのdataをdstにデコードする。
func decodeData(t *testing.T, body []byte, dst any) {
	t.Helper()
	env := decodeEnvelope(t, body)
	if !env.OK {
		t.Fatalf("expected ok envelope, got: %s", body)
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("failed to decode data: %v\nraw: %s", err, env.Data)
	}
}

func assertErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Errorf("status = %d, want %d (body: %s)", status, wantStatus, body)
	}
	env := decodeEnvelope(t, body)
	if env.OK {
		t.Fatalf("ok = true, want false")
	}
	if env.Error == nil || env.Error.Code != wantCode {
		t.Errorf("error = %+v, want code %q", env.Error, wantCode)
	}
}

// withClaims は認証済みリクエストを模すため、コンテキストに認証主体を設定する。
func withClaims(r *http.Request, userID string, role model.Role) *http.Request {
	claims := &model.Claims{Subject: userID, Email: userID + "@example.com", Role: role}
	return r.WithContext(middleware.ContextWithClaims(r.Context(), claims))
}

// withURLParam はchiのURLパラメータをリクエストに設定する。
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}
