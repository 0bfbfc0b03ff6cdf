package stats

import "stackgp/internal/model"

// Summarize returns best, mean and worst of a fitness sample. An empty
// sample yields the zero value.
func Summarize(fitness []float32) model.GenerationStats {
	if len(fitness) == 0 {
		return model.GenerationStats{}
	}
	best, worst := fitness[0], fitness[0]
	total := 0.0
	for _, f := range fitness {
		if f > best {
			best = f
		}
		if f < worst {
			worst = f
		}
		total += float64(f)
	}
	return model.GenerationStats{
		Best:  best,
		Mean:  float32(total / float64(len(fitness))),
		Worst: worst,
	}
}

// Improvement is the change of the last value over the first.
func Improvement(series []float32) float32 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1] - series[0]
}
