package scape

import (
	"fmt"
	"strings"
	"sync/atomic"

	"stackgp/internal/genotype"
	"stackgp/internal/model"
)

// Epsilon keeps the fitness of a perfect program finite.
const Epsilon = 1e-3

// Aggregation selects how per-row discrepancies are combined.
type Aggregation int

const (
	AbsoluteError Aggregation = iota
	SquaredError
)

func (a Aggregation) String() string {
	switch a {
	case AbsoluteError:
		return "absolute"
	case SquaredError:
		return "squared"
	default:
		return fmt.Sprintf("aggregation(%d)", int(a))
	}
}

func ParseAggregation(name string) (Aggregation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "absolute", "abs", "mae":
		return AbsoluteError, nil
	case "squared", "sq", "mse":
		return SquaredError, nil
	default:
		return 0, fmt.Errorf("unsupported aggregation: %s", name)
	}
}

func (a Aggregation) discrepancy(predicted, expected int32) float64 {
	diff := float64(predicted) - float64(expected)
	if a == SquaredError {
		return diff * diff
	}
	if diff < 0 {
		return -diff
	}
	return diff
}

// DatasetScape scores a program against labelled rows as
// rows / (total discrepancy + Epsilon).
type DatasetScape struct {
	name        string
	data        model.Dataset
	aggregation Aggregation
	evaluations atomic.Int64
}

func NewDatasetScape(name string, data model.Dataset, aggregation Aggregation) (*DatasetScape, error) {
	if err := ValidateDataset(data); err != nil {
		return nil, err
	}
	if aggregation != AbsoluteError && aggregation != SquaredError {
		return nil, fmt.Errorf("unsupported aggregation: %s", aggregation)
	}
	if name == "" {
		name = "dataset"
	}
	return &DatasetScape{name: name, data: data, aggregation: aggregation}, nil
}

func (s *DatasetScape) Name() string {
	return s.name
}

func (s *DatasetScape) Aggregation() Aggregation {
	return s.aggregation
}

func (s *DatasetScape) Dataset() model.Dataset {
	return s.data
}

// Score runs the program on every row. Safe for concurrent use.
func (s *DatasetScape) Score(genome model.Genome) float32 {
	s.evaluations.Add(1)

	var m genotype.Machine
	total := 0.0
	for _, row := range s.data {
		predicted := m.Run(genome, row.Inputs())
		total += s.aggregation.discrepancy(predicted, row.Expected())
	}
	return float32(float64(len(s.data)) / (total + Epsilon))
}

// Evaluations is the number of full scorings performed so far.
func (s *DatasetScape) Evaluations() int64 {
	return s.evaluations.Load()
}
