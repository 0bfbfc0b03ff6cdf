package genotype

import (
	"errors"
	"fmt"
	"math/rand"

	"stackgp/internal/model"
)

// ErrNilRNG is returned when a random source is missing. Callers own the
// seeded stream so runs can be reproduced.
var ErrNilRNG = errors.New("random source is required")

// Random synthesizes a genome whose length is drawn uniformly from
// [rangeDown, rangeUp) and whose instructions are drawn from vocab.
func Random(rng *rand.Rand, rangeDown, rangeUp int, vocab []model.Opcode) (model.Genome, error) {
	if rangeDown <= 0 || rangeDown >= rangeUp {
		return nil, fmt.Errorf("invalid genome length range [%d, %d)", rangeDown, rangeUp)
	}
	if rng == nil {
		return nil, ErrNilRNG
	}

	length := rangeDown + rng.Intn(rangeUp-rangeDown)
	genome := make(model.Genome, 0, length)
	for i := 0; i < length; i++ {
		inst, err := RandomOperator(rng, vocab)
		if err != nil {
			return nil, err
		}
		genome = append(genome, inst)
	}
	return genome, nil
}
