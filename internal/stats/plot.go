package stats

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

const (
	defaultPlotHeight = 20
	logFloor          = -6.0
)

// RenderFitnessPlot draws best, average and worst fitness per generation as
// one ascii chart on a log10 scale, floored at 1e-6.
func RenderFitnessPlot(best, average, worst []float32, height int) string {
	if len(best) == 0 {
		return ""
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	series := [][]float64{logSeries(best), logSeries(average), logSeries(worst)}
	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Caption("log10 fitness: best / average / worst"),
	)
}

func logSeries(values []float32) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v <= 0 {
			out = append(out, logFloor)
			continue
		}
		out = append(out, math.Max(logFloor, math.Log10(float64(v))))
	}
	if len(out) == 0 {
		out = append(out, 0)
	}
	return out
}
