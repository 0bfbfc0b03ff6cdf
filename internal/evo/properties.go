package evo

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"stackgp/internal/genotype"
	"stackgp/internal/model"
	"stackgp/internal/scape"
)

// DefaultMinGenomeLength is the floor kept by remove mutations.
const DefaultMinGenomeLength = 3

var ErrInvalidProperties = errors.New("invalid genetic properties")

// SelectionPolicy names the parent selection and size regulation strategy.
type SelectionPolicy string

const (
	SelectionRoulette   SelectionPolicy = "roulette"
	SelectionTruncation SelectionPolicy = "truncation"
)

// GeneticProperties is the immutable configuration of one run. Rates are
// fractions of PopulationSize.
type GeneticProperties struct {
	RangeDown            int               `json:"range_down" yaml:"range_down" validate:"gt=0"`
	RangeUp              int               `json:"range_up" yaml:"range_up" validate:"gtfield=RangeDown"`
	PopulationSize       int               `json:"population_size" yaml:"population_size" validate:"gt=0"`
	RemovalMutationRate  float64           `json:"removal_mutation_rate" yaml:"removal_mutation_rate" validate:"gte=0"`
	AdditionMutationRate float64           `json:"addition_mutation_rate" yaml:"addition_mutation_rate" validate:"gte=0"`
	CrossOverRate        float64           `json:"cross_over_rate" yaml:"cross_over_rate" validate:"gte=0"`
	ReproductionRate     float64           `json:"reproduction_rate" yaml:"reproduction_rate" validate:"gte=0"`
	MinGenomeLength      int               `json:"min_genome_length" yaml:"min_genome_length" validate:"gte=0"`
	Vocabulary           []model.Opcode    `json:"vocabulary,omitempty" yaml:"vocabulary,omitempty"`
	Selection            SelectionPolicy   `json:"selection" yaml:"selection" validate:"omitempty,oneof=roulette truncation"`
	Aggregation          scape.Aggregation `json:"aggregation" yaml:"aggregation" validate:"gte=0,lte=1"`
}

// DefaultProperties mirrors the reference quadratic run.
func DefaultProperties() GeneticProperties {
	return GeneticProperties{
		RangeDown:            2,
		RangeUp:              4,
		PopulationSize:       1000,
		RemovalMutationRate:  0.005,
		AdditionMutationRate: 0.0075,
		CrossOverRate:        0.8,
		ReproductionRate:     0.1,
		MinGenomeLength:      DefaultMinGenomeLength,
		Selection:            SelectionRoulette,
		Aggregation:          scape.AbsoluteError,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the properties and returns a copy with defaults filled in.
func (p GeneticProperties) Validate() (GeneticProperties, error) {
	if err := validate.Struct(p); err != nil {
		return GeneticProperties{}, fmt.Errorf("%w: %v", ErrInvalidProperties, err)
	}
	if p.MinGenomeLength == 0 {
		p.MinGenomeLength = DefaultMinGenomeLength
	}
	if p.Selection == "" {
		p.Selection = SelectionRoulette
	}
	if len(p.Vocabulary) == 0 {
		p.Vocabulary = append([]model.Opcode(nil), genotype.DefaultVocabulary...)
	} else {
		p.Vocabulary = append([]model.Opcode(nil), p.Vocabulary...)
	}
	if err := genotype.ValidateVocabulary(p.Vocabulary); err != nil {
		return GeneticProperties{}, fmt.Errorf("%w: %v", ErrInvalidProperties, err)
	}
	return p, nil
}

func (p GeneticProperties) crossoverPairs() int {
	return int(p.CrossOverRate * float64(p.PopulationSize) / 2)
}

func (p GeneticProperties) removals() int {
	return int(p.RemovalMutationRate * float64(p.PopulationSize))
}

func (p GeneticProperties) additions() int {
	return int(p.AdditionMutationRate * float64(p.PopulationSize))
}

func (p GeneticProperties) reproductions() int {
	return int(p.ReproductionRate * float64(p.PopulationSize))
}
