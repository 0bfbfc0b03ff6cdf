package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// GenerationStats is the fitness summary of one settled population.
type GenerationStats struct {
	Best  float32 `json:"best"`
	Mean  float32 `json:"mean"`
	Worst float32 `json:"worst"`
}

// GenerationDiagnostics describes one generation of a run.
type GenerationDiagnostics struct {
	Generation     int           `json:"generation"`
	Best           float32       `json:"best"`
	Mean           float32       `json:"mean"`
	Worst          float32       `json:"worst"`
	MeanLength     float64       `json:"mean_length"`
	Diversity      int           `json:"diversity"`
	Offspring      int           `json:"offspring"`
	Mutations      int           `json:"mutations"`
	Evaluations    int           `json:"evaluations"`
	CacheHits      int           `json:"cache_hits"`
	PopulationSize int           `json:"population_size"`
	Duration       time.Duration `json:"duration_ns"`
}

// RunRecord is the reporting summary of one finished evolution run. It does
// not carry the population.
type RunRecord struct {
	VersionedRecord
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	Target           string    `json:"target"`
	PopulationSize   int       `json:"population_size"`
	Generations      int       `json:"generations"`
	Seed             int64     `json:"seed"`
	Selection        string    `json:"selection"`
	Aggregation      string    `json:"aggregation"`
	Best             []float32 `json:"best"`
	Average          []float32 `json:"average"`
	Worst            []float32 `json:"worst"`
	FinalBestFitness float32   `json:"final_best_fitness"`
	BestProgram      string    `json:"best_program"`
}
