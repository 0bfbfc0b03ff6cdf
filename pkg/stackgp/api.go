package stackgp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"stackgp/internal/evo"
	"stackgp/internal/model"
	"stackgp/internal/scape"
	"stackgp/internal/stats"
	"stackgp/internal/storage"
	"stackgp/internal/targetid"
)

const (
	defaultArtifactsDir    = "runs"
	defaultDBPath          = "stackgp.db"
	defaultTarget          = "quadratic"
	defaultSamples         = 100
	defaultGenerations     = 100
	defaultPlotHeight      = 40
	defaultPredictionStart = 20
	defaultPredictionRows  = 8
	defaultTopPrograms     = 10
	defaultRunsLimit       = 20
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	Logger       *slog.Logger
	Metrics      *evo.Metrics
}

// Client runs evolutions and keeps their reports. It is not safe for
// concurrent use.
type Client struct {
	store       storage.Store
	initialized bool

	artifactsDir string
	logger       *slog.Logger
	metrics      *evo.Metrics
}

type RunRequest struct {
	Target      string
	DatasetPath string
	Samples     int
	Generations int
	Seed        int64
	Workers     int
	// Properties defaults to evo.DefaultProperties when nil.
	Properties      *evo.GeneticProperties
	PlotHeight      int
	PredictionStart int
	PredictionRows  int
	TopPrograms     int
}

type Prediction struct {
	Inputs    []int32
	Expected  int32
	Predicted int32
}

type RunSummary struct {
	RunID               string
	CreatedAt           time.Time
	Target              string
	ArtifactsDir        string
	Best                []float32
	Average             []float32
	Worst               []float32
	Diagnostics         []model.GenerationDiagnostics
	FinalBestFitness    float32
	BestProgram         model.Genome
	LeastComplexProgram model.Genome
	LeastComplexFitness float32
	Predictions         []Prediction
	Plot                string
	Evaluations         int64
	Duration            time.Duration
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	Target           string
	Seed             int64
	Population       int
	Generations      int
	Selection        string
	FinalBestFitness float32
}

type TargetItem struct {
	Name        string
	Description string
}

func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		artifactsDir: artifactsDir,
		logger:       logger,
		metrics:      opts.Metrics,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	c.initialized = true
	return nil
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Target == "" && req.DatasetPath == "" {
		req.Target = defaultTarget
	}
	if req.Samples <= 0 {
		req.Samples = defaultSamples
	}
	if req.Generations <= 0 {
		req.Generations = defaultGenerations
	}
	if req.PlotHeight <= 0 {
		req.PlotHeight = defaultPlotHeight
	}
	if req.PredictionStart < 0 {
		return RunSummary{}, errors.New("prediction start must be >= 0")
	}
	if req.PredictionStart == 0 && req.PredictionRows == 0 {
		req.PredictionStart = defaultPredictionStart
	}
	if req.PredictionRows <= 0 {
		req.PredictionRows = defaultPredictionRows
	}
	if req.TopPrograms <= 0 {
		req.TopPrograms = defaultTopPrograms
	}
	props := evo.DefaultProperties()
	if req.Properties != nil {
		props = *req.Properties
	}

	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}
	data, targetName, err := loadDataset(req)
	if err != nil {
		return RunSummary{}, err
	}

	start := time.Now()
	runID := uuid.NewString()
	logger := c.logger.With(slog.String("run_id", runID), slog.String("target", targetName))

	engine, err := evo.NewEngine(evo.Config{
		Properties: props,
		Workers:    req.Workers,
		Seed:       req.Seed,
		Logger:     logger,
		Metrics:    c.metrics,
	})
	if err != nil {
		return RunSummary{}, err
	}
	props = engine.Properties()

	result, err := engine.Run(ctx, req.Generations, data)
	if err != nil {
		return RunSummary{}, err
	}
	if err := engine.SortByFitness(ctx, data); err != nil {
		return RunSummary{}, err
	}
	best, err := engine.Best()
	if err != nil {
		return RunSummary{}, err
	}
	simplest, err := engine.LeastComplex(best.CachedFitness())
	if err != nil {
		return RunSummary{}, err
	}

	now := time.Now().UTC()
	finalBest := best.CachedFitness()
	top := topPrograms(engine.Population(), req.TopPrograms)

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:                runID,
			Target:               targetName,
			DatasetPath:          req.DatasetPath,
			Samples:              len(data),
			PopulationSize:       props.PopulationSize,
			Generations:          req.Generations,
			Seed:                 req.Seed,
			Workers:              req.Workers,
			RangeDown:            props.RangeDown,
			RangeUp:              props.RangeUp,
			MinGenomeLength:      props.MinGenomeLength,
			RemovalMutationRate:  props.RemovalMutationRate,
			AdditionMutationRate: props.AdditionMutationRate,
			CrossOverRate:        props.CrossOverRate,
			ReproductionRate:     props.ReproductionRate,
			Selection:            string(props.Selection),
			Aggregation:          props.Aggregation.String(),
			Vocabulary:           opcodeNames(props.Vocabulary),
		},
		Best:        result.Best,
		Average:     result.Average,
		Worst:       result.Worst,
		Diagnostics: result.Diagnostics,
		TopPrograms: top,
	})
	if err != nil {
		return RunSummary{}, err
	}
	if err := stats.AppendRunIndex(c.artifactsDir, stats.RunIndexEntry{
		RunID:            runID,
		Target:           targetName,
		PopulationSize:   props.PopulationSize,
		Generations:      req.Generations,
		Seed:             req.Seed,
		Selection:        string(props.Selection),
		FinalBestFitness: finalBest,
		CreatedAtUTC:     now.Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	if err := c.store.SaveRun(ctx, model.RunRecord{
		ID:               runID,
		CreatedAt:        now,
		Target:           targetName,
		PopulationSize:   props.PopulationSize,
		Generations:      req.Generations,
		Seed:             req.Seed,
		Selection:        string(props.Selection),
		Aggregation:      props.Aggregation.String(),
		Best:             result.Best,
		Average:          result.Average,
		Worst:            result.Worst,
		FinalBestFitness: finalBest,
		BestProgram:      best.Genome().String(),
	}); err != nil {
		return RunSummary{}, fmt.Errorf("save run %s: %w", runID, err)
	}

	summary := RunSummary{
		RunID:               runID,
		CreatedAt:           now,
		Target:              targetName,
		ArtifactsDir:        filepath.Clean(runDir),
		Best:                append([]float32(nil), result.Best...),
		Average:             append([]float32(nil), result.Average...),
		Worst:               append([]float32(nil), result.Worst...),
		Diagnostics:         result.Diagnostics,
		FinalBestFitness:    finalBest,
		BestProgram:         best.Genome().Clone(),
		LeastComplexProgram: simplest.Genome().Clone(),
		LeastComplexFitness: simplest.CachedFitness(),
		Predictions:         predictions(engine, best, data, req.PredictionStart, req.PredictionRows),
		Plot:                stats.RenderFitnessPlot(result.Best, result.Average, result.Worst, req.PlotHeight),
		Evaluations:         result.Evaluations,
		Duration:            time.Since(start),
	}
	logger.Info("run stored",
		slog.String("artifacts_dir", summary.ArtifactsDir),
		slog.Float64("final_best", float64(finalBest)),
		slog.String("best_program", best.Genome().String()),
	)
	return summary, nil
}

// Runs lists runs newest first from the store. A store with no runs, such
// as a fresh memory backend, falls back to the artifact run index.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = defaultRunsLimit
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	records, err := c.store.ListRuns(ctx, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	if len(records) > 0 {
		out := make([]RunItem, 0, len(records))
		for _, run := range records {
			out = append(out, RunItem{
				RunID:            run.ID,
				CreatedAtUTC:     run.CreatedAt.UTC().Format(time.RFC3339Nano),
				Target:           run.Target,
				Seed:             run.Seed,
				Population:       run.PopulationSize,
				Generations:      run.Generations,
				Selection:        run.Selection,
				FinalBestFitness: run.FinalBestFitness,
			})
		}
		return out, nil
	}

	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:            e.RunID,
			CreatedAtUTC:     e.CreatedAtUTC,
			Target:           e.Target,
			Seed:             e.Seed,
			Population:       e.PopulationSize,
			Generations:      e.Generations,
			Selection:        e.Selection,
			FinalBestFitness: e.FinalBestFitness,
		})
	}
	return out, nil
}

// Lookup returns a stored run. Runs missing from the store, such as those
// made by an earlier process with the memory backend, are rebuilt from their
// artifacts without the best program.
func (c *Client) Lookup(ctx context.Context, runID string) (model.RunRecord, bool, error) {
	if runID == "" {
		return model.RunRecord{}, false, errors.New("run id is required")
	}
	if err := c.Init(ctx); err != nil {
		return model.RunRecord{}, false, err
	}
	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil || ok {
		return run, ok, err
	}

	cfg, ok, err := stats.ReadRunConfig(c.artifactsDir, runID)
	if err != nil || !ok {
		return model.RunRecord{}, false, err
	}
	series, ok, err := stats.ReadFitnessSeries(c.artifactsDir, runID)
	if err != nil || !ok {
		return model.RunRecord{}, false, err
	}
	run = model.RunRecord{
		ID:             cfg.RunID,
		Target:         cfg.Target,
		PopulationSize: cfg.PopulationSize,
		Generations:    cfg.Generations,
		Seed:           cfg.Seed,
		Selection:      cfg.Selection,
		Aggregation:    cfg.Aggregation,
		Best:           series[0],
		Average:        series[1],
		Worst:          series[2],
	}
	if n := len(series[0]); n > 0 {
		run.FinalBestFitness = series[0][n-1]
	}
	return run, true, nil
}

func (c *Client) Targets() []TargetItem {
	targets := scape.ListTargets()
	out := make([]TargetItem, 0, len(targets))
	for _, target := range targets {
		out = append(out, TargetItem{Name: target.Name, Description: target.Description})
	}
	return out
}

func loadDataset(req RunRequest) (model.Dataset, string, error) {
	if req.DatasetPath != "" {
		data, err := scape.LoadCSV(req.DatasetPath)
		if err != nil {
			return nil, "", fmt.Errorf("load dataset %s: %w", req.DatasetPath, err)
		}
		name := req.Target
		if name == "" {
			name = filepath.Base(req.DatasetPath)
		}
		return data, name, nil
	}
	data, err := scape.BuildTarget(req.Target, req.Samples)
	if err != nil {
		return nil, "", err
	}
	return data, targetid.Normalize(req.Target), nil
}

// predictions evaluates best on rows [start, start+count), clipped to the
// dataset. A start beyond the dataset falls back to the first rows.
func predictions(engine *evo.Engine, best *evo.Individual, data model.Dataset, start, count int) []Prediction {
	if start >= len(data) {
		start = 0
	}
	end := start + count
	if end > len(data) {
		end = len(data)
	}
	out := make([]Prediction, 0, end-start)
	for _, row := range data[start:end] {
		inputs := append([]int32(nil), row.Inputs()...)
		out = append(out, Prediction{
			Inputs:    inputs,
			Expected:  row.Expected(),
			Predicted: engine.Predict(best, inputs),
		})
	}
	return out
}

// topPrograms expects population sorted ascending by fitness.
func topPrograms(population []*evo.Individual, limit int) []stats.TopProgram {
	out := make([]stats.TopProgram, 0, limit)
	for i := len(population) - 1; i >= 0 && len(out) < limit; i-- {
		ind := population[i]
		out = append(out, stats.TopProgram{
			Rank:    len(out) + 1,
			Fitness: ind.CachedFitness(),
			Length:  ind.Len(),
			Program: ind.Genome().String(),
		})
	}
	return out
}

func opcodeNames(vocab []model.Opcode) []string {
	out := make([]string, 0, len(vocab))
	for _, op := range vocab {
		out = append(out, op.String())
	}
	return out
}
