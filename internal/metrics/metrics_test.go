package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOnSeparateRegistries(t *testing.T) {
	// api 和 worker 各自持有一个 registry，重复创建不能 panic
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

func TestFitnessHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Fitness.Observe(0.75)
	m.Fitness.Observe(1)

	expected := `
# HELP exam_generation_fitness Fitness of the best question selection per run
# TYPE exam_generation_fitness histogram
exam_generation_fitness_bucket{le="0.5"} 0
exam_generation_fitness_bucket{le="0.6"} 0
exam_generation_fitness_bucket{le="0.7"} 0
exam_generation_fitness_bucket{le="0.8"} 1
exam_generation_fitness_bucket{le="0.9"} 1
exam_generation_fitness_bucket{le="0.95"} 1
exam_generation_fitness_bucket{le="0.99"} 1
exam_generation_fitness_bucket{le="1"} 2
exam_generation_fitness_bucket{le="+Inf"} 2
exam_generation_fitness_sum 1.75
exam_generation_fitness_count 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "exam_generation_fitness"))
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.GenerationsTotal.WithLabelValues("save", "success").Inc()
	m.GenerationsTotal.WithLabelValues("save", "success").Inc()
	m.JobsTotal.WithLabelValues("failed").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("save", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("preview", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsTotal.WithLabelValues("failed")))
}
