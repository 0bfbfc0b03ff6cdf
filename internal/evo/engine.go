package evo

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"stackgp/internal/genotype"
	"stackgp/internal/model"
	"stackgp/internal/scape"
	"stackgp/internal/stats"
)

// Config wires an Engine. Workers bounds every parallel phase and defaults
// to runtime.NumCPU.
type Config struct {
	Properties GeneticProperties
	Workers    int
	Seed       int64
	Logger     *slog.Logger
	Metrics    *Metrics
}

// RunResult holds one entry per generation in each series.
type RunResult struct {
	Best        []float32
	Average     []float32
	Worst       []float32
	Diagnostics []model.GenerationDiagnostics
	Evaluations int64
}

// Engine owns a population for the duration of a run. It is not safe for
// concurrent use; parallel work happens only inside its phases.
type Engine struct {
	props    GeneticProperties
	workers  int
	rng      *rand.Rand
	selector Selector
	logger   *slog.Logger
	metrics  *Metrics

	population []*Individual
	scape      *scape.DatasetScape
}

// NewEngine validates the configuration and synthesizes the initial
// population from a generator seeded with cfg.Seed.
func NewEngine(cfg Config) (*Engine, error) {
	props, err := cfg.Properties.Validate()
	if err != nil {
		return nil, err
	}
	selector, err := SelectorFromProperties(props)
	if err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	population := make([]*Individual, 0, props.PopulationSize)
	for i := 0; i < props.PopulationSize; i++ {
		ind, err := NewIndividual(rng, props)
		if err != nil {
			return nil, fmt.Errorf("synthesize individual %d: %w", i, err)
		}
		population = append(population, ind)
	}

	return &Engine{
		props:      props,
		workers:    workers,
		rng:        rng,
		selector:   selector,
		logger:     logger,
		metrics:    cfg.Metrics,
		population: population,
	}, nil
}

func (e *Engine) Properties() GeneticProperties {
	return e.props
}

// Population gives read access to the current individuals.
func (e *Engine) Population() []*Individual {
	return e.population
}

// Evaluations is the number of full scorings done against the last dataset.
func (e *Engine) Evaluations() int64 {
	if e.scape == nil {
		return 0
	}
	return e.scape.Evaluations()
}

// Run evolves the population for the given number of generations. ctx is
// checked between generations and bounds the parallel phases.
func (e *Engine) Run(ctx context.Context, generations int, data model.Dataset) (RunResult, error) {
	if generations < 0 {
		return RunResult{}, fmt.Errorf("generations must be >= 0")
	}
	s, err := e.scapeFor(data)
	if err != nil {
		return RunResult{}, err
	}

	e.logger.Info("evolution started",
		slog.Int("generations", generations),
		slog.Int("population", e.props.PopulationSize),
		slog.String("selection", e.selector.Name()),
		slog.String("aggregation", s.Aggregation().String()),
		slog.Int("rows", len(data)),
		slog.Int("workers", e.workers),
	)

	result := RunResult{
		Best:        make([]float32, 0, generations),
		Average:     make([]float32, 0, generations),
		Worst:       make([]float32, 0, generations),
		Diagnostics: make([]model.GenerationDiagnostics, 0, generations),
	}
	startEvaluations := s.Evaluations()
	for gen := 0; gen < generations; gen++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}
		diag, err := e.generation(ctx, s, gen+1)
		if err != nil {
			return RunResult{}, fmt.Errorf("generation %d: %w", gen+1, err)
		}
		result.Best = append(result.Best, diag.Best)
		result.Average = append(result.Average, diag.Mean)
		result.Worst = append(result.Worst, diag.Worst)
		result.Diagnostics = append(result.Diagnostics, diag)
		e.metrics.observeGeneration(diag)

		e.logger.Debug("generation complete",
			slog.Int("generation", diag.Generation),
			slog.Float64("best", float64(diag.Best)),
			slog.Float64("mean", float64(diag.Mean)),
			slog.Float64("worst", float64(diag.Worst)),
			slog.Int("diversity", diag.Diversity),
			slog.Int("evaluations", diag.Evaluations),
		)
	}
	result.Evaluations = s.Evaluations() - startEvaluations

	if n := len(result.Best); n > 0 {
		e.logger.Info("evolution finished",
			slog.Int("generations", n),
			slog.Float64("best", float64(result.Best[n-1])),
			slog.Int64("evaluations", result.Evaluations),
		)
	}
	return result, nil
}

func (e *Engine) generation(ctx context.Context, s *scape.DatasetScape, number int) (model.GenerationDiagnostics, error) {
	start := time.Now()
	if len(e.population) == 0 {
		return model.GenerationDiagnostics{}, ErrEmptyPopulation
	}
	diag := model.GenerationDiagnostics{Generation: number}

	fitness, hits, err := e.refresh(ctx, s)
	if err != nil {
		return model.GenerationDiagnostics{}, err
	}
	diag.Evaluations += len(fitness) - hits
	diag.CacheHits += hits

	pairs, err := e.selector.PickPairs(e.rng, fitness, e.props.crossoverPairs())
	if err != nil {
		return model.GenerationDiagnostics{}, err
	}
	offspring := make([]*Individual, 0, 2*len(pairs))
	for _, pair := range pairs {
		first, second, err := e.population[pair[0]].Crossover(e.rng, e.population[pair[1]])
		if err != nil {
			return model.GenerationDiagnostics{}, fmt.Errorf("crossover %d x %d: %w", pair[0], pair[1], err)
		}
		offspring = append(offspring, first, second)
	}
	diag.Offspring = len(offspring)

	mutations, err := e.mutate(ctx)
	if err != nil {
		return model.GenerationDiagnostics{}, err
	}
	diag.Mutations = mutations

	e.population = append(e.population, offspring...)

	fitness, hits, err = e.refresh(ctx, s)
	if err != nil {
		return model.GenerationDiagnostics{}, err
	}
	diag.Evaluations += len(fitness) - hits
	diag.CacheHits += hits

	e.population, fitness, err = e.selector.Regulate(e.rng, e.population, fitness, e.props.PopulationSize)
	if err != nil {
		return model.GenerationDiagnostics{}, err
	}

	summary := stats.Summarize(fitness)
	diag.Best = summary.Best
	diag.Mean = summary.Mean
	diag.Worst = summary.Worst
	diag.PopulationSize = len(e.population)
	diag.MeanLength, diag.Diversity = e.shape()
	diag.Duration = time.Since(start)
	return diag, nil
}

// refresh scores every individual in parallel. Each task touches only its
// own individual's cache.
func (e *Engine) refresh(ctx context.Context, s scape.Scape) ([]float32, int, error) {
	fitness := make([]float32, len(e.population))
	cached := make([]bool, len(e.population))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, ind := range e.population {
		i, ind := i, ind
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fitness[i], cached[i] = ind.Fitness(s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	hits := 0
	for _, hit := range cached {
		if hit {
			hits++
		}
	}
	e.metrics.observeRefresh(len(fitness)-hits, hits)
	return fitness, hits, nil
}

type mutationKind uint8

const (
	mutationRemove mutationKind = iota
	mutationAdd
)

// mutate draws removal then addition targets from the engine stream, groups
// the edits by target and applies each group in parallel with a private
// generator, so no stream or individual is shared between tasks.
func (e *Engine) mutate(ctx context.Context) (int, error) {
	n := len(e.population)
	plan := make(map[int][]mutationKind)
	total := 0
	for i := 0; i < e.props.removals(); i++ {
		idx := e.rng.Intn(n)
		plan[idx] = append(plan[idx], mutationRemove)
		total++
	}
	for i := 0; i < e.props.additions(); i++ {
		idx := e.rng.Intn(n)
		plan[idx] = append(plan[idx], mutationAdd)
		total++
	}
	if total == 0 {
		return 0, nil
	}

	targets := make([]int, 0, len(plan))
	for idx := range plan {
		targets = append(targets, idx)
	}
	sort.Ints(targets)
	seeds := make([]int64, len(targets))
	for i := range seeds {
		seeds[i] = e.rng.Int63()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, idx := range targets {
		idx := idx
		ind := e.population[idx]
		edits := plan[idx]
		seed := seeds[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(seed))
			for _, kind := range edits {
				switch kind {
				case mutationRemove:
					ind.MutateRemove(e.props.MinGenomeLength)
				case mutationAdd:
					if err := ind.MutateAdd(rng, e.props.Vocabulary); err != nil {
						return fmt.Errorf("add mutation on %d: %w", idx, err)
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return total, nil
}

func (e *Engine) shape() (float64, int) {
	if len(e.population) == 0 {
		return 0, 0
	}
	genomes := make([]model.Genome, 0, len(e.population))
	length := 0
	for _, ind := range e.population {
		genomes = append(genomes, ind.Genome())
		length += ind.Len()
	}
	return float64(length) / float64(len(e.population)), genotype.Distinct(genomes)
}

// scapeFor reuses the last scape when data is the same dataset, so caches
// from a previous Run stay valid.
func (e *Engine) scapeFor(data model.Dataset) (*scape.DatasetScape, error) {
	if e.scape != nil && sameDataset(e.scape.Dataset(), data) {
		return e.scape, nil
	}
	s, err := scape.NewDatasetScape("dataset", data, e.props.Aggregation)
	if err != nil {
		return nil, err
	}
	e.scape = s
	return s, nil
}

func sameDataset(a, b model.Dataset) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	return &a[0] == &b[0]
}
