package stackgp

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stackgp/internal/evo"
	"stackgp/internal/model"
	"stackgp/internal/stats"
)

func newTestClient(t *testing.T, dir string) *Client {
	t.Helper()
	client, err := New(Options{
		StoreKind:    "memory",
		ArtifactsDir: dir,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func smallProperties() *evo.GeneticProperties {
	props := evo.DefaultProperties()
	props.PopulationSize = 30
	return &props
}

func TestClientRunRunsAndLookup(t *testing.T) {
	dir := t.TempDir()
	client := newTestClient(t, dir)
	ctx := context.Background()

	summary, err := client.Run(ctx, RunRequest{
		Target:      "quadratic",
		Samples:     40,
		Generations: 3,
		Seed:        42,
		Workers:     2,
		Properties:  smallProperties(),
		PlotHeight:  6,
	})
	require.NoError(t, err)
	require.NotEmpty(t, summary.RunID)
	require.Equal(t, "quadratic", summary.Target)
	require.Len(t, summary.Best, 3)
	require.Len(t, summary.Average, 3)
	require.Len(t, summary.Worst, 3)
	require.Len(t, summary.Diagnostics, 3)
	require.Equal(t, summary.Best[2], summary.FinalBestFitness)
	require.NotEmpty(t, summary.BestProgram)
	require.NotEmpty(t, summary.Plot)
	require.Positive(t, summary.Evaluations)

	require.LessOrEqual(t, len(summary.LeastComplexProgram), len(summary.BestProgram))
	require.Equal(t, summary.FinalBestFitness, summary.LeastComplexFitness)

	require.Len(t, summary.Predictions, 8)
	require.Equal(t, []int32{20}, summary.Predictions[0].Inputs)
	require.Equal(t, int32(800), summary.Predictions[0].Expected)
	require.Equal(t, int32(2*27*27), summary.Predictions[7].Expected)

	for _, file := range []string{"config.json", "fitness_history.json", "fitness_history.csv", "top_programs.json", "generation_diagnostics.json"} {
		_, err := os.Stat(filepath.Join(summary.ArtifactsDir, file))
		require.NoError(t, err, file)
	}

	runs, err := client.Runs(ctx, RunsRequest{Limit: 5})
	require.NoError(t, err)
	require.NotEmpty(t, runs)
	require.Equal(t, summary.RunID, runs[0].RunID)
	require.Equal(t, 30, runs[0].Population)
	require.Equal(t, "roulette", runs[0].Selection)

	run, ok, err := client.Lookup(ctx, summary.RunID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, summary.BestProgram.String(), run.BestProgram)
	require.Equal(t, summary.Best, run.Best)

	_, ok, err = client.Lookup(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestClientLookupFallsBackToArtifacts(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := newTestClient(t, dir)
	summary, err := first.Run(ctx, RunRequest{Generations: 2, Samples: 30, Properties: smallProperties(), Workers: 1})
	require.NoError(t, err)

	second := newTestClient(t, dir)
	run, ok, err := second.Lookup(ctx, summary.RunID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, summary.RunID, run.ID)
	require.Equal(t, "quadratic", run.Target)
	require.Equal(t, summary.Best, run.Best)
	require.Equal(t, summary.FinalBestFitness, run.FinalBestFitness)
	require.Empty(t, run.BestProgram)

	runs, err := second.Runs(ctx, RunsRequest{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

func TestClientRunsReadsStoreBeforeIndex(t *testing.T) {
	dir := t.TempDir()
	client := newTestClient(t, dir)
	ctx := context.Background()
	require.NoError(t, client.Init(ctx))

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, id := range []string{"older", "newer", "newest"} {
		require.NoError(t, client.store.SaveRun(ctx, model.RunRecord{
			ID:               id,
			CreatedAt:        base.Add(time.Duration(i) * time.Minute),
			Target:           "cubic",
			PopulationSize:   50 + i,
			Generations:      4,
			Seed:             int64(i),
			Selection:        "truncation",
			FinalBestFitness: float32(i),
		}))
	}
	entries, err := stats.ListRunIndex(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "records were written to the store only")

	runs, err := client.Runs(ctx, RunsRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "newest", runs[0].RunID)
	require.Equal(t, "newer", runs[1].RunID)
	require.Equal(t, 52, runs[0].Population)
	require.Equal(t, "cubic", runs[0].Target)
	require.Equal(t, "truncation", runs[0].Selection)
	require.Equal(t, base.Add(2*time.Minute).Format(time.RFC3339Nano), runs[0].CreatedAtUTC)
}

func TestClientRunFromCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "double.csv")
	var b strings.Builder
	b.WriteString("x,y\n")
	for x := 0; x < 12; x++ {
		b.WriteString(strconv.Itoa(x) + "," + strconv.Itoa(2*x))
		b.WriteString("\n")
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	client := newTestClient(t, filepath.Join(dir, "runs"))
	summary, err := client.Run(context.Background(), RunRequest{
		DatasetPath: path,
		Generations: 2,
		Properties:  smallProperties(),
	})
	require.NoError(t, err)
	require.Equal(t, "double.csv", summary.Target)
	// 12 rows: predictions fall back to the first rows.
	require.Len(t, summary.Predictions, 8)
	require.Equal(t, []int32{0}, summary.Predictions[0].Inputs)

	cfg, ok, err := stats.ReadRunConfig(filepath.Join(dir, "runs"), summary.RunID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, path, cfg.DatasetPath)
	require.Equal(t, 12, cfg.Samples)
}

func TestClientRunRejectsBadInput(t *testing.T) {
	client := newTestClient(t, t.TempDir())
	ctx := context.Background()

	_, err := client.Run(ctx, RunRequest{Target: "nope", Generations: 1, Properties: smallProperties()})
	require.Error(t, err)

	props := smallProperties()
	props.RangeUp = props.RangeDown
	_, err = client.Run(ctx, RunRequest{Generations: 1, Properties: props})
	require.ErrorIs(t, err, evo.ErrInvalidProperties)

	_, err = client.Run(ctx, RunRequest{DatasetPath: "does-not-exist.csv", Generations: 1})
	require.Error(t, err)

	_, _, err = client.Lookup(ctx, "")
	require.Error(t, err)
}

func TestClientRunNormalizesTargetAlias(t *testing.T) {
	client := newTestClient(t, t.TempDir())
	summary, err := client.Run(context.Background(), RunRequest{
		Target:      "Target_Square",
		Samples:     10,
		Generations: 1,
		Seed:        3,
		Properties:  smallProperties(),
	})
	require.NoError(t, err)
	require.Equal(t, "quadratic", summary.Target)
}

func TestClientTargets(t *testing.T) {
	client := newTestClient(t, t.TempDir())
	targets := client.Targets()
	names := make([]string, 0, len(targets))
	for _, target := range targets {
		names = append(names, target.Name)
		require.NotEmpty(t, target.Description)
	}
	require.Contains(t, names, "quadratic")
	require.Contains(t, names, "product")
}

func TestNewRejectsUnknownStore(t *testing.T) {
	_, err := New(Options{StoreKind: "etcd"})
	require.Error(t, err)
}
