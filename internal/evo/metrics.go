package evo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"stackgp/internal/model"
)

// Metrics collects engine counters. A nil *Metrics records nothing.
type Metrics struct {
	generations       prometheus.Counter
	evaluations       prometheus.Counter
	cacheHits         prometheus.Counter
	offspring         prometheus.Counter
	bestFitness       prometheus.Gauge
	populationSize    prometheus.Gauge
	generationSeconds prometheus.Histogram
}

// NewMetrics registers the engine collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		generations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "stackgp",
			Name:      "generations_total",
			Help:      "Completed generations.",
		}),
		evaluations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "stackgp",
			Name:      "fitness_evaluations_total",
			Help:      "Programs scored against the dataset.",
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "stackgp",
			Name:      "fitness_cache_hits_total",
			Help:      "Fitness lookups served from an unchanged program's cache.",
		}),
		offspring: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "stackgp",
			Name:      "crossover_offspring_total",
			Help:      "Offspring produced by crossover.",
		}),
		bestFitness: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "stackgp",
			Name:      "best_fitness",
			Help:      "Best fitness of the last settled population.",
		}),
		populationSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "stackgp",
			Name:      "population_size",
			Help:      "Population size after regulation.",
		}),
		generationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stackgp",
			Name:      "generation_duration_seconds",
			Help:      "Wall time of one generation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
	}
}

func (m *Metrics) observeRefresh(evaluations, hits int) {
	if m == nil {
		return
	}
	m.evaluations.Add(float64(evaluations))
	m.cacheHits.Add(float64(hits))
}

func (m *Metrics) observeGeneration(diag model.GenerationDiagnostics) {
	if m == nil {
		return
	}
	m.generations.Inc()
	m.offspring.Add(float64(diag.Offspring))
	m.bestFitness.Set(float64(diag.Best))
	m.populationSize.Set(float64(diag.PopulationSize))
	m.generationSeconds.Observe(diag.Duration.Seconds())
}
