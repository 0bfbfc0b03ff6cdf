package genotype

import (
	"errors"
	"math/rand"

	"stackgp/internal/model"
)

var ErrEmptyGenome = errors.New("genome is empty")

// Crossover performs single-point recombination. Split points are drawn
// independently for each parent; the offspring are a[:p0]+b[p1:] and
// b[:p1]+a[p0:], so no instruction is created or lost.
func Crossover(rng *rand.Rand, a, b model.Genome) (model.Genome, model.Genome, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, nil, ErrEmptyGenome
	}
	if rng == nil {
		return nil, nil, ErrNilRNG
	}

	p0 := rng.Intn(len(a))
	p1 := rng.Intn(len(b))

	first := make(model.Genome, 0, p0+len(b)-p1)
	first = append(first, a[:p0]...)
	first = append(first, b[p1:]...)

	second := make(model.Genome, 0, p1+len(a)-p0)
	second = append(second, b[:p1]...)
	second = append(second, a[p0:]...)
	return first, second, nil
}

// AppendOperator grows genome by one random operator.
func AppendOperator(rng *rand.Rand, genome model.Genome, vocab []model.Opcode) (model.Genome, error) {
	inst, err := RandomOperator(rng, vocab)
	if err != nil {
		return genome, err
	}
	return append(genome, inst), nil
}

// TrimLast drops the final instruction when the genome is longer than floor.
func TrimLast(genome model.Genome, floor int) model.Genome {
	if len(genome) <= floor {
		return genome
	}
	return genome[:len(genome)-1]
}
