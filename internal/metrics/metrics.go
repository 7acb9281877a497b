// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラー層から利用する。
type MetricsCollector interface {
	RecordOperationSuccess(command string)
	RecordOperationFailure(command string, code string)
	RecordHTTPStatus(statusCode int)
	RecordOperationLatency(command string, duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	opSuccess  *prometheus.CounterVec
	opFail     *prometheus.CounterVec
	httpStatus *prometheus.CounterVec
	opLatency  *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		opSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kaimono_op_success_total",
			Help: "操作成功のコマンド別合計数",
		}, []string{"command"}),
		opFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kaimono_op_fail_total",
			Help: "操作失敗のコマンド・エラーコード別合計数",
		}, []string{"command", "code"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kaimono_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kaimono_op_latency_seconds",
			Help:    "操作のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
	}

	reg.MustRegister(
		c.opSuccess,
		c.opFail,
		c.httpStatus,
		c.opLatency,
	)

	return c
}

// RecordOperationSuccess は操作成功を記録する。
func (c *Collector) RecordOperationSuccess(command string) {
	c.opSuccess.WithLabelValues(command).Inc()
}

// RecordOperationFailure は操作失敗をエラーコード付きで記録する。
func (c *Collector) RecordOperationFailure(command string, code string) {
	c.opFail.WithLabelValues(command, code).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordOperationLatency は操作のレイテンシを記録する。
func (c *Collector) RecordOperationLatency(command string, duration time.Duration) {
	c.opLatency.WithLabelValues(command).Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
// ルーターが/metricsにマウントして使用する。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
