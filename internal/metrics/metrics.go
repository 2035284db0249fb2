// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 認証イベントの種類
const (
	EventRegister = "register"
	EventLogin    = "login"
	EventLogout   = "logout"
)

// 認証イベントの結果
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultConflict = "conflict"
)

// Recorder はメトリクス記録のインターフェース。
// ミドルウェアやハンドラーから利用する。
type Recorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
	RecordAuthEvent(event, result string)
	RecordRateLimited(limitType string)
}

// Nop は何も記録しないRecorder。
type Nop struct{}

func (Nop) RecordRequest(string, string, int, time.Duration) {}
func (Nop) RecordAuthEvent(string, string)                   {}
func (Nop) RecordRateLimited(string)                         {}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	authEvents  *prometheus.CounterVec
	rateLimited *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskman_http_requests_total",
			Help: "ルート・メソッド・ステータス別のHTTPリクエスト数",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskman_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskman_auth_events_total",
			Help: "登録・ログイン・ログアウトの結果別件数",
		}, []string{"event", "result"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskman_rate_limited_total",
			Help: "レート制限により拒否されたリクエスト数",
		}, []string{"limit_type"}),
	}

	reg.MustRegister(
		c.requests,
		c.latency,
		c.authEvents,
		c.rateLimited,
	)

	return c
}

// RecordRequest はHTTPリクエストの件数と処理時間を記録する。
// routeにはURLではなくルートパターンを渡し、ラベルの種類数を抑える。
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAuthEvent は認証イベントを記録する。
func (c *Collector) RecordAuthEvent(event, result string) {
	c.authEvents.WithLabelValues(event, result).Inc()
}

// RecordRateLimited はレート制限による拒否を記録する。
func (c *Collector) RecordRateLimited(limitType string) {
	c.rateLimited.WithLabelValues(limitType).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
