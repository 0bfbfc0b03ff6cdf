package evo

import (
	"testing"

	"stackgp/internal/model"
	"stackgp/internal/scape"
)

func quadraticDataset(t *testing.T, samples int) model.Dataset {
	t.Helper()
	data, err := scape.BuildTarget("quadratic", samples)
	if err != nil {
		t.Fatalf("build dataset: %v", err)
	}
	return data
}

func quadraticScape(t *testing.T, samples int) *scape.DatasetScape {
	t.Helper()
	s, err := scape.NewDatasetScape("quadratic", quadraticDataset(t, samples), scape.AbsoluteError)
	if err != nil {
		t.Fatalf("new scape: %v", err)
	}
	return s
}

func smallProperties() GeneticProperties {
	props := DefaultProperties()
	props.PopulationSize = 40
	props.RemovalMutationRate = 0.05
	props.AdditionMutationRate = 0.075
	return props
}

func individualsFromFitness(fitness []float32) []*Individual {
	out := make([]*Individual, 0, len(fitness))
	for i := range fitness {
		out = append(out, NewIndividualFromGenome(model.Genome{model.Integer(int32(i)), model.Duplicate, model.Sum}))
	}
	return out
}
