package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeTracked   = "tracked"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultSkipped  = "skipped"
	ResultNotFound = "not_found"
)

// Metrics 业务指标
type Metrics struct {
	ViewsTotal              *prometheus.CounterVec
	RecomputeTotal          *prometheus.CounterVec
	RecomputeDuration       *prometheus.HistogramVec
	BackgroundDroppedTotal  *prometheus.CounterVec
	GeoLookupsTotal         *prometheus.CounterVec
	CDCMessagesTotal        *prometheus.CounterVec
	DirtyEntitiesDrainTotal prometheus.Counter
}

// NewMetrics 创建并注册全部指标
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		ViewsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewpoint_views_total",
				Help: "View tracking attempts by resource type and outcome",
			},
			[]string{"resource_type", "outcome"},
		),
		RecomputeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewpoint_analytics_recompute_total",
				Help: "Aggregate recomputations by entity type and result",
			},
			[]string{"entity_type", "result"},
		),
		RecomputeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "viewpoint_analytics_recompute_duration_seconds",
				Help:    "Aggregate recomputation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"entity_type"},
		),
		BackgroundDroppedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewpoint_background_tasks_dropped_total",
				Help: "Background tasks dropped because the queue was full or closed",
			},
			[]string{"task"},
		),
		GeoLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewpoint_geo_lookups_total",
				Help: "Geo lookups by result",
			},
			[]string{"result"},
		),
		CDCMessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewpoint_cdc_messages_total",
				Help: "Canal messages consumed by table and result",
			},
			[]string{"table", "result"},
		),
		DirtyEntitiesDrainTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "viewpoint_dirty_entities_drained_total",
				Help: "Entities recomputed by the dirty set drain",
			},
		),
	}

	registry.MustRegister(
		m.ViewsTotal,
		m.RecomputeTotal,
		m.RecomputeDuration,
		m.BackgroundDroppedTotal,
		m.GeoLookupsTotal,
		m.CDCMessagesTotal,
		m.DirtyEntitiesDrainTotal,
	)
	return m
}

// New 使用独立 registry，附带 Go 运行时与进程指标
func New() (*Metrics, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewMetrics(registry), registry
}

// Handler 暴露 /metrics
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// Nop 不注册到任何 registry，测试与未开启指标时使用
func Nop() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
