package evo

import (
	"context"
	"sort"

	"stackgp/internal/model"
)

// SortByFitness orders the population ascending by fitness on data; the
// fittest individual ends up last. Ties keep their relative order.
func (e *Engine) SortByFitness(ctx context.Context, data model.Dataset) error {
	if len(e.population) == 0 {
		return ErrEmptyPopulation
	}
	s, err := e.scapeFor(data)
	if err != nil {
		return err
	}
	fitness, _, err := e.refresh(ctx, s)
	if err != nil {
		return err
	}

	order := make([]int, len(e.population))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fitness[order[a]] < fitness[order[b]]
	})
	sorted := make([]*Individual, len(order))
	for i, idx := range order {
		sorted[i] = e.population[idx]
	}
	e.population = sorted
	return nil
}

// SortByComplexity orders the population ascending by program length.
func (e *Engine) SortByComplexity() {
	sort.SliceStable(e.population, func(a, b int) bool {
		return e.population[a].Len() < e.population[b].Len()
	})
}

// Best returns the individual with the highest cached fitness.
func (e *Engine) Best() (*Individual, error) {
	if len(e.population) == 0 {
		return nil, ErrEmptyPopulation
	}
	best := e.population[0]
	for _, ind := range e.population[1:] {
		if ind.CachedFitness() > best.CachedFitness() {
			best = ind
		}
	}
	return best, nil
}

// LeastComplex returns the shortest program whose cached fitness is at least
// minFitness, preferring the fitter one on equal length. Use 0 to consider
// the whole population.
func (e *Engine) LeastComplex(minFitness float32) (*Individual, error) {
	var pick *Individual
	for _, ind := range e.population {
		if ind.CachedFitness() < minFitness {
			continue
		}
		if pick == nil || ind.Len() < pick.Len() ||
			(ind.Len() == pick.Len() && ind.CachedFitness() > pick.CachedFitness()) {
			pick = ind
		}
	}
	if pick == nil {
		return nil, ErrEmptyPopulation
	}
	return pick, nil
}

// Predict runs ind's program on one row of inputs.
func (e *Engine) Predict(ind *Individual, args []int32) int32 {
	return ind.Eval(args)
}
