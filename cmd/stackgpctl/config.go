package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"stackgp/internal/evo"
	"stackgp/internal/genotype"
	"stackgp/internal/scape"
	"stackgp/pkg/stackgp"
)

// runConfig is the file form of a run. JSON files decode too, since JSON is
// valid YAML.
type runConfig struct {
	Target      string           `yaml:"target"`
	Dataset     string           `yaml:"dataset"`
	Samples     int              `yaml:"samples"`
	Generations int              `yaml:"generations"`
	Seed        int64            `yaml:"seed"`
	Workers     int              `yaml:"workers"`
	PlotHeight  int              `yaml:"plot_height"`
	Properties  propertiesConfig `yaml:"properties"`
}

type propertiesConfig struct {
	PopulationSize       int     `yaml:"population_size"`
	RangeDown            int     `yaml:"range_down"`
	RangeUp              int     `yaml:"range_up"`
	MinGenomeLength      int     `yaml:"min_genome_length"`
	RemovalMutationRate  float64 `yaml:"removal_mutation_rate"`
	AdditionMutationRate float64 `yaml:"addition_mutation_rate"`
	CrossOverRate        float64 `yaml:"cross_over_rate"`
	ReproductionRate     float64 `yaml:"reproduction_rate"`
	Vocabulary           string  `yaml:"vocabulary"`
	Selection            string  `yaml:"selection"`
	Aggregation          string  `yaml:"aggregation"`
}

func defaultRunConfig() runConfig {
	props := evo.DefaultProperties()
	// Target stays empty; the client picks quadratic only when no dataset
	// is set either.
	return runConfig{
		Samples:     100,
		Generations: 100,
		Seed:        1,
		PlotHeight:  40,
		Properties: propertiesConfig{
			PopulationSize:       props.PopulationSize,
			RangeDown:            props.RangeDown,
			RangeUp:              props.RangeUp,
			MinGenomeLength:      props.MinGenomeLength,
			RemovalMutationRate:  props.RemovalMutationRate,
			AdditionMutationRate: props.AdditionMutationRate,
			CrossOverRate:        props.CrossOverRate,
			ReproductionRate:     props.ReproductionRate,
			Selection:            string(props.Selection),
			Aggregation:          props.Aggregation.String(),
		},
	}
}

// loadRunConfig overlays the file at path onto the defaults. Keys missing from
// the file keep their default value.
func loadRunConfig(path string) (runConfig, error) {
	cfg := defaultRunConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return runConfig{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return runConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c runConfig) request() (stackgp.RunRequest, error) {
	vocab, err := genotype.ParseVocabulary(c.Properties.Vocabulary)
	if err != nil {
		return stackgp.RunRequest{}, err
	}
	aggregation, err := scape.ParseAggregation(c.Properties.Aggregation)
	if err != nil {
		return stackgp.RunRequest{}, err
	}

	props := evo.GeneticProperties{
		RangeDown:            c.Properties.RangeDown,
		RangeUp:              c.Properties.RangeUp,
		PopulationSize:       c.Properties.PopulationSize,
		RemovalMutationRate:  c.Properties.RemovalMutationRate,
		AdditionMutationRate: c.Properties.AdditionMutationRate,
		CrossOverRate:        c.Properties.CrossOverRate,
		ReproductionRate:     c.Properties.ReproductionRate,
		MinGenomeLength:      c.Properties.MinGenomeLength,
		Vocabulary:           vocab,
		Selection:            evo.SelectionPolicy(c.Properties.Selection),
		Aggregation:          aggregation,
	}
	return stackgp.RunRequest{
		Target:      c.Target,
		DatasetPath: c.Dataset,
		Samples:     c.Samples,
		Generations: c.Generations,
		Seed:        c.Seed,
		Workers:     c.Workers,
		Properties:  &props,
		PlotHeight:  c.PlotHeight,
	}, nil
}
