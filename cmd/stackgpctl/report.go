package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"stackgp/internal/model"
	"stackgp/internal/stats"
	"stackgp/pkg/stackgp"
)

func printRunSummary(w io.Writer, summary stackgp.RunSummary, plot bool) {
	fmt.Fprintf(w, "run completed run_id=%s target=%s generations=%d\n", summary.RunID, summary.Target, len(summary.Best))
	for i := range summary.Best {
		fmt.Fprintf(w, "generation=%d best=%.6f average=%.6f worst=%.6f\n",
			i+1, summary.Best[i], summary.Average[i], summary.Worst[i])
	}
	fmt.Fprintf(w, "final_best_fitness=%.6f improvement=%.6f\n", summary.FinalBestFitness, stats.Improvement(summary.Best))
	fmt.Fprintf(w, "best_program=%s length=%d\n", summary.BestProgram, len(summary.BestProgram))
	fmt.Fprintf(w, "least_complex_program=%s length=%d fitness=%.6f\n",
		summary.LeastComplexProgram, len(summary.LeastComplexProgram), summary.LeastComplexFitness)
	for _, p := range summary.Predictions {
		fmt.Fprintf(w, "prediction inputs=%s expected=%d predicted=%d\n", formatInputs(p.Inputs), p.Expected, p.Predicted)
	}
	fmt.Fprintf(w, "evaluations=%s duration=%s\n", humanize.Comma(summary.Evaluations), summary.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "artifacts_dir=%s\n", summary.ArtifactsDir)
	if plot && summary.Plot != "" {
		fmt.Fprintln(w, summary.Plot)
	}
}

func printRuns(w io.Writer, items []stackgp.RunItem, now time.Time) {
	for _, item := range items {
		created := item.CreatedAtUTC
		if ts, err := time.Parse(time.RFC3339Nano, item.CreatedAtUTC); err == nil {
			created = humanize.RelTime(ts, now, "ago", "from now")
		}
		fmt.Fprintf(w, "run_id=%s created=%q target=%s seed=%d pop=%s gens=%d selection=%s final_best_fitness=%.6f\n",
			item.RunID, created, item.Target, item.Seed, humanize.Comma(int64(item.Population)),
			item.Generations, item.Selection, item.FinalBestFitness)
	}
}

func printRunRecord(w io.Writer, run model.RunRecord) {
	fmt.Fprintf(w, "run_id=%s target=%s seed=%d pop=%d gens=%d selection=%s aggregation=%s\n",
		run.ID, run.Target, run.Seed, run.PopulationSize, run.Generations, run.Selection, run.Aggregation)
	for i := range run.Best {
		fmt.Fprintf(w, "generation=%d best=%.6f average=%.6f worst=%.6f\n", i+1, run.Best[i], run.Average[i], run.Worst[i])
	}
	fmt.Fprintf(w, "final_best_fitness=%.6f improvement=%.6f\n", run.FinalBestFitness, stats.Improvement(run.Best))
	if run.BestProgram != "" {
		fmt.Fprintf(w, "best_program=%s\n", run.BestProgram)
	}
}

func formatInputs(inputs []int32) string {
	parts := make([]string, 0, len(inputs))
	for _, v := range inputs {
		parts = append(parts, fmt.Sprint(v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}
