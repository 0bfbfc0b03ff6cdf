package evo

import (
	"math/rand"

	"stackgp/internal/genotype"
	"stackgp/internal/model"
	"stackgp/internal/scape"
)

// Individual owns one program and its fitness cache.
type Individual struct {
	genome model.Genome
	cache  scape.FitnessCache
}

// NewIndividual synthesizes a random program from the run properties.
func NewIndividual(rng *rand.Rand, props GeneticProperties) (*Individual, error) {
	genome, err := genotype.Random(rng, props.RangeDown, props.RangeUp, props.Vocabulary)
	if err != nil {
		return nil, err
	}
	return &Individual{genome: genome}, nil
}

// NewIndividualFromGenome takes a copy of genome.
func NewIndividualFromGenome(genome model.Genome) *Individual {
	return &Individual{genome: genome.Clone()}
}

// Genome exposes the program. Callers must not modify it.
func (ind *Individual) Genome() model.Genome {
	return ind.genome
}

func (ind *Individual) Len() int {
	return len(ind.genome)
}

// Reproduce deep-copies the program and its cache.
func (ind *Individual) Reproduce() *Individual {
	return &Individual{genome: ind.genome.Clone(), cache: ind.cache.Clone()}
}

// Crossover recombines two parents into two offspring with empty caches.
func (ind *Individual) Crossover(rng *rand.Rand, other *Individual) (*Individual, *Individual, error) {
	first, second, err := genotype.Crossover(rng, ind.genome, other.genome)
	if err != nil {
		return nil, nil, err
	}
	return &Individual{genome: first}, &Individual{genome: second}, nil
}

func (ind *Individual) MutateAdd(rng *rand.Rand, vocab []model.Opcode) error {
	genome, err := genotype.AppendOperator(rng, ind.genome, vocab)
	if err != nil {
		return err
	}
	ind.genome = genome
	return nil
}

// MutateRemove drops the last instruction unless the program is at floor.
func (ind *Individual) MutateRemove(floor int) {
	ind.genome = genotype.TrimLast(ind.genome, floor)
}

// Fitness returns the score under s, reusing the cache while the program is
// unchanged.
func (ind *Individual) Fitness(s scape.Scape) (float32, bool) {
	return ind.cache.Fitness(s, ind.genome)
}

// CachedFitness is the last computed score, valid or not.
func (ind *Individual) CachedFitness() float32 {
	value, _ := ind.cache.Cached()
	return value
}

func (ind *Individual) Eval(args []int32) int32 {
	return genotype.Evaluate(ind.genome, args)
}
