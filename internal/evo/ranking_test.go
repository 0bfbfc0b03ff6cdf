package evo

import (
	"context"
	"errors"
	"testing"

	"stackgp/internal/model"
)

func engineWithGenomes(t *testing.T, genomes ...model.Genome) *Engine {
	t.Helper()
	props := smallProperties()
	props.PopulationSize = len(genomes)
	engine := newTestEngine(t, props, 1, 2)
	for i, genome := range genomes {
		engine.population[i] = NewIndividualFromGenome(genome)
	}
	return engine
}

func TestSortByFitnessAscending(t *testing.T) {
	exact := model.Genome{model.Duplicate, model.Multiply, model.Duplicate, model.Sum}
	square := model.Genome{model.Duplicate, model.Multiply}
	negated := model.Genome{model.Duplicate, model.Multiply, model.Neg}
	engine := engineWithGenomes(t, exact, negated, square)

	if err := engine.SortByFitness(context.Background(), quadraticDataset(t, 20)); err != nil {
		t.Fatalf("sort: %v", err)
	}
	pop := engine.Population()
	if !pop[0].Genome().Equal(negated) || !pop[1].Genome().Equal(square) || !pop[2].Genome().Equal(exact) {
		t.Fatalf("unexpected order: %s, %s, %s", pop[0].Genome(), pop[1].Genome(), pop[2].Genome())
	}

	best, err := engine.Best()
	if err != nil {
		t.Fatalf("best: %v", err)
	}
	if !best.Genome().Equal(exact) {
		t.Fatalf("expected exact program as best, got %s", best.Genome())
	}
}

func TestSortByComplexity(t *testing.T) {
	long := model.Genome{model.Duplicate, model.Multiply, model.Duplicate, model.Sum, model.Neg}
	short := model.Genome{model.Duplicate, model.Multiply}
	mid := model.Genome{model.Duplicate, model.Multiply, model.Neg}
	engine := engineWithGenomes(t, long, short, mid)

	engine.SortByComplexity()
	pop := engine.Population()
	if pop[0].Len() != 2 || pop[1].Len() != 3 || pop[2].Len() != 5 {
		t.Fatalf("unexpected complexity order: %d %d %d", pop[0].Len(), pop[1].Len(), pop[2].Len())
	}
}

func TestLeastComplex(t *testing.T) {
	exact := model.Genome{model.Duplicate, model.Multiply, model.Duplicate, model.Sum}
	padded := model.Genome{model.Duplicate, model.Multiply, model.Duplicate, model.Sum, model.Swap}
	square := model.Genome{model.Duplicate, model.Multiply}
	engine := engineWithGenomes(t, padded, square, exact)
	if err := engine.SortByFitness(context.Background(), quadraticDataset(t, 20)); err != nil {
		t.Fatalf("sort: %v", err)
	}

	shortest, err := engine.LeastComplex(0)
	if err != nil {
		t.Fatalf("least complex: %v", err)
	}
	if !shortest.Genome().Equal(square) {
		t.Fatalf("expected shortest program, got %s", shortest.Genome())
	}

	best, _ := engine.Best()
	fit, err := engine.LeastComplex(best.CachedFitness())
	if err != nil {
		t.Fatalf("least complex at best fitness: %v", err)
	}
	if !fit.Genome().Equal(exact) {
		t.Fatalf("expected the shorter of the exact programs, got %s", fit.Genome())
	}

	if _, err := engine.LeastComplex(best.CachedFitness() * 2); !errors.Is(err, ErrEmptyPopulation) {
		t.Fatalf("expected ErrEmptyPopulation above best fitness, got %v", err)
	}
}

func TestPredict(t *testing.T) {
	engine := engineWithGenomes(t, model.Genome{model.Swap, model.Neg, model.Sum})
	if got := engine.Predict(engine.Population()[0], []int32{3, 10}); got != 7 {
		t.Fatalf("expected 10 - 3 = 7, got %d", got)
	}
}
