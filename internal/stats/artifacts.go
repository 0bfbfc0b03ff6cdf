package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"stackgp/internal/model"
)

const runIndexFile = "run_index.json"

type RunConfig struct {
	RunID                string   `json:"run_id"`
	Target               string   `json:"target"`
	DatasetPath          string   `json:"dataset_path,omitempty"`
	Samples              int      `json:"samples"`
	PopulationSize       int      `json:"population_size"`
	Generations          int      `json:"generations"`
	Seed                 int64    `json:"seed"`
	Workers              int      `json:"workers"`
	RangeDown            int      `json:"range_down"`
	RangeUp              int      `json:"range_up"`
	MinGenomeLength      int      `json:"min_genome_length"`
	RemovalMutationRate  float64  `json:"removal_mutation_rate"`
	AdditionMutationRate float64  `json:"addition_mutation_rate"`
	CrossOverRate        float64  `json:"cross_over_rate"`
	ReproductionRate     float64  `json:"reproduction_rate"`
	Selection            string   `json:"selection"`
	Aggregation          string   `json:"aggregation"`
	Vocabulary           []string `json:"vocabulary"`
}

type TopProgram struct {
	Rank    int     `json:"rank"`
	Fitness float32 `json:"fitness"`
	Length  int     `json:"length"`
	Program string  `json:"program"`
}

type RunArtifacts struct {
	Config      RunConfig                     `json:"config"`
	Best        []float32                     `json:"best"`
	Average     []float32                     `json:"average"`
	Worst       []float32                     `json:"worst"`
	Diagnostics []model.GenerationDiagnostics `json:"diagnostics,omitempty"`
	TopPrograms []TopProgram                  `json:"top_programs"`
}

type RunIndexEntry struct {
	RunID            string  `json:"run_id"`
	Target           string  `json:"target"`
	PopulationSize   int     `json:"population_size"`
	Generations      int     `json:"generations"`
	Seed             int64   `json:"seed"`
	Selection        string  `json:"selection"`
	FinalBestFitness float32 `json:"final_best_fitness"`
	CreatedAtUTC     string  `json:"created_at_utc"`
}

// WriteRunArtifacts writes one directory per run under baseDir and returns it.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "fitness_history.json"), map[string]any{
		"best":    artifacts.Best,
		"average": artifacts.Average,
		"worst":   artifacts.Worst,
	}); err != nil {
		return "", err
	}
	if err := WriteFitnessSeries(runDir, artifacts.Best, artifacts.Average, artifacts.Worst); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "top_programs.json"), artifacts.TopPrograms); err != nil {
		return "", err
	}
	if len(artifacts.Diagnostics) > 0 {
		if err := writeJSON(filepath.Join(runDir, "generation_diagnostics.json"), artifacts.Diagnostics); err != nil {
			return "", err
		}
	}

	return runDir, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns index entries newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	path := filepath.Join(baseDir, runID, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RunConfig{}, false, nil
		}
		return RunConfig{}, false, err
	}

	var cfg RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, false, err
	}
	return cfg, true, nil
}

func WriteFitnessSeries(runDir string, best, average, worst []float32) error {
	if len(best) != len(average) || len(best) != len(worst) {
		return fmt.Errorf("fitness series length mismatch: best=%d average=%d worst=%d", len(best), len(average), len(worst))
	}
	path := filepath.Join(runDir, "fitness_history.csv")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"generation", "best", "average", "worst"}); err != nil {
		return err
	}
	for i := range best {
		if err := writer.Write([]string{
			strconv.Itoa(i + 1),
			formatFitness(best[i]),
			formatFitness(average[i]),
			formatFitness(worst[i]),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadFitnessSeries returns the best, average and worst columns.
func ReadFitnessSeries(baseDir, runID string) ([3][]float32, bool, error) {
	var out [3][]float32
	path := filepath.Join(baseDir, runID, "fitness_history.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, false, nil
		}
		return out, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return out, true, nil
		}
		return out, false, err
	}
	if len(header) < 4 {
		return out, false, fmt.Errorf("fitness series header must have 4 columns")
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, false, err
		}
		if len(record) < 4 {
			return out, false, fmt.Errorf("fitness series row must have 4 columns")
		}
		for col := 0; col < 3; col++ {
			value, err := strconv.ParseFloat(record[col+1], 32)
			if err != nil {
				return out, false, err
			}
			out[col] = append(out[col], float32(value))
		}
	}
	return out, true, nil
}

func formatFitness(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
