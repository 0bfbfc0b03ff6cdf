package genotype

import (
	"fmt"
	"math/rand"
)

// RandomElement draws one value uniformly.
func RandomElement[T any](rng *rand.Rand, values []T) (T, error) {
	var zero T
	if rng == nil {
		return zero, ErrNilRNG
	}
	if len(values) == 0 {
		return zero, fmt.Errorf("values are required")
	}
	return values[rng.Intn(len(values))], nil
}
