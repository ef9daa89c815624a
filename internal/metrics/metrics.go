package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 记录自动组卷相关的指标
type Metrics struct {
	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	Fitness            prometheus.Histogram
	GenerationsUsed    prometheus.Histogram
	JobsTotal          *prometheus.CounterVec
}

// New 在 reg 上注册所有指标，测试中可以传入 prometheus.NewRegistry() 避免重复注册
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		GenerationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exam_generation_total",
				Help: "Total number of exam generation runs",
			},
			[]string{"mode", "status"},
		),
		GenerationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "exam_generation_duration_seconds",
				Help:    "Duration of exam generation runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		Fitness: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "exam_generation_fitness",
				Help:    "Fitness of the best question selection per run",
				Buckets: []float64{0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 0.99, 1},
			},
		),
		GenerationsUsed: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "exam_generation_generations_used",
				Help:    "Number of genetic algorithm generations executed per run",
				Buckets: prometheus.LinearBuckets(10, 10, 10),
			},
		),
		JobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exam_generation_jobs_total",
				Help: "Total number of asynchronous generation jobs by status",
			},
			[]string{"status"},
		),
	}
}
