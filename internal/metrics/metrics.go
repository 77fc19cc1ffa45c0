package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "titlemeta"

// result 标签取值。
const (
	ResultOK              = "ok"
	ResultFetchError      = "fetch_error"
	ResultExtractionError = "extraction_error"
	ResultFailed          = "failed"
)

// Metrics 汇总单次 title 查询与 series 补充的结果。
//
// 约束：所有方法对 nil 接收者安全（未启用指标时直接传 nil）。
type Metrics struct {
	titles   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	series   *prometheus.CounterVec
}

// New 在 reg 上注册全部指标；reg 为 nil 时使用 prometheus.DefaultRegisterer。
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		titles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "titles_total",
			Help:      "Total number of title lookups by result",
		}, []string{"result"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "title_duration_seconds",
			Help:      "Title lookup duration (fetch + extract + normalize + series)",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		series: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_enrichment_total",
			Help:      "Series enrichment attempts by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) ObserveTitle(result string, dur time.Duration) {
	if m == nil {
		return
	}
	m.titles.WithLabelValues(result).Inc()
	m.duration.WithLabelValues(result).Observe(dur.Seconds())
}

func (m *Metrics) ObserveSeries(result string) {
	if m == nil {
		return
	}
	m.series.WithLabelValues(result).Inc()
}
