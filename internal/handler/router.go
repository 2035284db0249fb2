package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/taskman/internal/metrics"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/validation"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	HealthChecker     HealthChecker
	TokenVerifier     middleware.TokenVerifier
	Cookies           SessionCookies
	CORSAllowedOrigin string
	HSTS              bool
	RateLimiter       *middleware.RateLimiter
	Validator         *validation.Validator

	// メトリクス
	Metrics         metrics.Recorder
	MetricsGatherer prometheus.Gatherer

	// サービス
	AuthService AuthServiceInterface
	TaskService TaskServiceInterface
	UserService UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// グローバルミドルウェアの実行順序:
//
//	RequestID → RealIP → Logging → Recovery → Metrics → SecurityHeaders → CORS
//
// 認証が必要なルートでは Session → RateLimit(General) を、
// 管理者ルートではさらに Admin を適用する。
// 登録・ログインは認証不要だが、IP単位の認証用レート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.HSTS))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.NotFound(routeNotFound)
	r.MethodNotAllowed(routeNotFound)

	authHandler := NewAuthHandler(deps.AuthService, deps.Validator, deps.Cookies, deps.Metrics)
	taskHandler := NewTaskHandler(deps.TaskService, deps.Validator)
	adminHandler := NewAdminHandler(deps.UserService)

	session := middleware.NewSessionMiddleware(deps.TokenVerifier, deps.Cookies)

	// --- 認証不要のルート ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/openapi", ServeOpenAPI)

		r.Route("/auth", func(r chi.Router) {
			r.With(deps.RateLimiter.AuthMiddleware()).Post("/register", authHandler.Register)
			r.With(deps.RateLimiter.AuthMiddleware()).Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.With(session, deps.RateLimiter.GeneralMiddleware()).Get("/me", authHandler.Me)
		})

		// --- 認証が必要なルート ---
		// ミドルウェアスタック: Session → RateLimit(General)
		r.Group(func(r chi.Router) {
			r.Use(session)
			r.Use(deps.RateLimiter.GeneralMiddleware())

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.ListTasks)
				r.Post("/", taskHandler.CreateTask)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", taskHandler.GetTask)
					r.Patch("/", taskHandler.UpdateTask)
					r.Delete("/", taskHandler.DeleteTask)
				})
			})

			// 管理者のみ
			r.With(middleware.NewAdminMiddleware()).Get("/admin/users", adminHandler.ListUsers)
		})
	})

	return r
}

// routeNotFound は未定義ルートとメソッド不一致に404の統一エラーを返す。
func routeNotFound(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteErrorResponse(w, model.NewNotFoundError("Route not found"))
}
