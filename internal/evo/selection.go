package evo

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

var ErrEmptyPopulation = errors.New("population is empty")

// Selector picks crossover parents and shrinks an oversized population back
// to its target size. fitness is aligned with the population slice.
type Selector interface {
	Name() string
	PickPairs(rng *rand.Rand, fitness []float32, pairs int) ([][2]int, error)
	Regulate(rng *rand.Rand, population []*Individual, fitness []float32, target int) ([]*Individual, []float32, error)
}

// SelectorFromProperties builds the selector named by props.Selection.
func SelectorFromProperties(props GeneticProperties) (Selector, error) {
	switch props.Selection {
	case "", SelectionRoulette:
		return RouletteSelector{}, nil
	case SelectionTruncation:
		return TruncationSelector{Reproductions: props.reproductions()}, nil
	default:
		return nil, fmt.Errorf("unsupported selection policy: %s", props.Selection)
	}
}

// RouletteSelector is fitness proportionate: parents are accepted with
// probability fitness/total and survivors are removed with probability
// 1 - fitness/total.
type RouletteSelector struct{}

func (RouletteSelector) Name() string {
	return string(SelectionRoulette)
}

func (RouletteSelector) PickPairs(rng *rand.Rand, fitness []float32, pairs int) ([][2]int, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(fitness) == 0 {
		return nil, ErrEmptyPopulation
	}
	total := totalFitness(fitness)
	out := make([][2]int, 0, pairs)
	for i := 0; i < pairs; i++ {
		mother := pickProportional(rng, fitness, total)
		father := pickProportional(rng, fitness, total)
		out = append(out, [2]int{mother, father})
	}
	return out, nil
}

// Regulate removes random individuals until target remain. Each draw is
// rejected with probability fitness/total, so fitter individuals survive
// more often without being guaranteed to.
func (RouletteSelector) Regulate(rng *rand.Rand, population []*Individual, fitness []float32, target int) ([]*Individual, []float32, error) {
	if rng == nil {
		return nil, nil, fmt.Errorf("random source is required")
	}
	if len(population) == 0 || target <= 0 {
		return nil, nil, ErrEmptyPopulation
	}
	if len(population) != len(fitness) {
		return nil, nil, fmt.Errorf("fitness mismatch: population=%d fitness=%d", len(population), len(fitness))
	}

	pop := append([]*Individual(nil), population...)
	fit := append([]float32(nil), fitness...)
	total := totalFitness(fit)
	for len(pop) > target {
		idx := rng.Intn(len(pop))
		keep := 0.0
		if usableTotal(total) {
			keep = float64(fit[idx]) / total
		}
		if rng.Float64() < keep {
			continue
		}
		pop = append(pop[:idx], pop[idx+1:]...)
		fit = append(fit[:idx], fit[idx+1:]...)
		total = totalFitness(fit)
	}
	return pop, fit, nil
}

// TruncationSelector is the deterministic elitist policy: the top
// Reproductions individuals are cloned, then only the fittest target remain.
// Parents pair the i-th best with the i-th worst.
type TruncationSelector struct {
	Reproductions int
}

func (TruncationSelector) Name() string {
	return string(SelectionTruncation)
}

func (TruncationSelector) PickPairs(_ *rand.Rand, fitness []float32, pairs int) ([][2]int, error) {
	if len(fitness) == 0 {
		return nil, ErrEmptyPopulation
	}
	ranked := rankDescending(fitness)
	n := len(ranked)
	out := make([][2]int, 0, pairs)
	for i := 0; i < pairs; i++ {
		k := i % n
		out = append(out, [2]int{ranked[k], ranked[n-1-k]})
	}
	return out, nil
}

func (s TruncationSelector) Regulate(_ *rand.Rand, population []*Individual, fitness []float32, target int) ([]*Individual, []float32, error) {
	if len(population) == 0 || target <= 0 {
		return nil, nil, ErrEmptyPopulation
	}
	if len(population) != len(fitness) {
		return nil, nil, fmt.Errorf("fitness mismatch: population=%d fitness=%d", len(population), len(fitness))
	}

	ranked := rankDescending(fitness)
	pop := make([]*Individual, 0, len(population)+s.Reproductions)
	fit := make([]float32, 0, len(population)+s.Reproductions)
	for _, idx := range ranked {
		pop = append(pop, population[idx])
		fit = append(fit, fitness[idx])
	}

	clones := s.Reproductions
	if clones > len(ranked) {
		clones = len(ranked)
	}
	// Clones share their parent's fitness, so inserting each right after its
	// parent keeps the slice ranked.
	if clones > 0 {
		merged := make([]*Individual, 0, len(pop)+clones)
		mergedFit := make([]float32, 0, len(pop)+clones)
		for i := range pop {
			merged = append(merged, pop[i])
			mergedFit = append(mergedFit, fit[i])
			if i < clones {
				merged = append(merged, pop[i].Reproduce())
				mergedFit = append(mergedFit, fit[i])
			}
		}
		pop, fit = merged, mergedFit
	}

	if len(pop) > target {
		pop = pop[:target]
		fit = fit[:target]
	}
	return pop, fit, nil
}

func totalFitness(fitness []float32) float64 {
	total := 0.0
	for _, f := range fitness {
		total += float64(f)
	}
	return total
}

func usableTotal(total float64) bool {
	return total > 0 && !math.IsInf(total, 0) && !math.IsNaN(total)
}

// pickProportional samples a uniform index and accepts it with probability
// fitness/total, resampling on rejection. Falls back to a uniform pick when
// the total carries no signal.
func pickProportional(rng *rand.Rand, fitness []float32, total float64) int {
	if !usableTotal(total) {
		return rng.Intn(len(fitness))
	}
	for {
		idx := rng.Intn(len(fitness))
		if rng.Float64()*total < float64(fitness[idx]) {
			return idx
		}
	}
}

// rankDescending returns indices ordered by fitness, fittest first. Ties keep
// population order.
func rankDescending(fitness []float32) []int {
	idx := make([]int, len(fitness))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return fitness[idx[a]] > fitness[idx[b]]
	})
	return idx
}
