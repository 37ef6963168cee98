// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder はリクエストパイプラインから利用するメトリクス収集のインターフェース。
type Recorder interface {
	RecordRequest(method string, status int, duration time.Duration)
	RecordReplay()
	RecordRefreshSuccess()
	RecordRefreshFailure()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	requestLatency *prometheus.HistogramVec
	httpStatus     *prometheus.CounterVec
	replays        prometheus.Counter
	refreshSuccess prometheus.Counter
	refreshFail    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "manabu_request_latency_seconds",
			Help:    "APIリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "manabu_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		replays: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "manabu_request_replay_total",
			Help: "リフレッシュ後に再送されたリクエストの合計数",
		}),
		refreshSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "manabu_token_refresh_success_total",
			Help: "トークンリフレッシュ成功の合計数",
		}),
		refreshFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "manabu_token_refresh_fail_total",
			Help: "トークンリフレッシュ失敗の合計数",
		}),
	}

	reg.MustRegister(
		c.requestLatency,
		c.httpStatus,
		c.replays,
		c.refreshSuccess,
		c.refreshFail,
	)

	return c
}

// RecordRequest はリクエスト1件の結果を記録する。
func (c *Collector) RecordRequest(method string, status int, duration time.Duration) {
	c.requestLatency.WithLabelValues(method).Observe(duration.Seconds())
	c.httpStatus.WithLabelValues(strconv.Itoa(status)).Inc()
}

// RecordReplay はリフレッシュ後の再送を記録する。
func (c *Collector) RecordReplay() {
	c.replays.Inc()
}

// RecordRefreshSuccess はトークンリフレッシュ成功を記録する。
func (c *Collector) RecordRefreshSuccess() {
	c.refreshSuccess.Inc()
}

// RecordRefreshFailure はトークンリフレッシュ失敗を記録する。
func (c *Collector) RecordRefreshFailure() {
	c.refreshFail.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
// 本ライブラリを常駐プロセスに組み込む場合に使用する。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
