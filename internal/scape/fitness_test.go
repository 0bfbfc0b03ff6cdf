package scape

import (
	"math"
	"testing"

	"stackgp/internal/model"
)

func doubleDataset() model.Dataset {
	return model.Dataset{{1, 2}, {2, 4}, {3, 6}}
}

func TestDatasetScapePerfectProgramScoresHighest(t *testing.T) {
	s, err := NewDatasetScape("double", doubleDataset(), AbsoluteError)
	if err != nil {
		t.Fatalf("new scape: %v", err)
	}
	perfect := s.Score(model.Genome{model.Duplicate, model.Sum})
	identity := s.Score(nil)

	if want := float32(3 / Epsilon); math.Abs(float64(perfect-want)) > 1 {
		t.Fatalf("expected perfect fitness %f, got=%f", want, perfect)
	}
	// identity is off by 1+2+3.
	if want := float32(3 / (6 + Epsilon)); math.Abs(float64(identity-want)) > 1e-4 {
		t.Fatalf("expected identity fitness %f, got=%f", want, identity)
	}
	if perfect <= identity {
		t.Fatal("expected the exact program to be fitter")
	}
}

func TestDatasetScapeAggregations(t *testing.T) {
	data := model.Dataset{{0, 3}, {0, -1}}
	abs, err := NewDatasetScape("", data, AbsoluteError)
	if err != nil {
		t.Fatalf("new absolute scape: %v", err)
	}
	sq, err := NewDatasetScape("", data, SquaredError)
	if err != nil {
		t.Fatalf("new squared scape: %v", err)
	}

	// Program returns 0 on both rows: abs error 3+1, squared error 9+1.
	if got, want := abs.Score(nil), float32(2/(4+Epsilon)); math.Abs(float64(got-want)) > 1e-5 {
		t.Fatalf("absolute: got=%f want=%f", got, want)
	}
	if got, want := sq.Score(nil), float32(2/(10+Epsilon)); math.Abs(float64(got-want)) > 1e-5 {
		t.Fatalf("squared: got=%f want=%f", got, want)
	}
}

func TestDatasetScapeHandlesExtremeDiscrepancy(t *testing.T) {
	data := model.Dataset{{math.MinInt32, math.MaxInt32}}
	s, err := NewDatasetScape("", data, SquaredError)
	if err != nil {
		t.Fatalf("new scape: %v", err)
	}
	got := s.Score(nil)
	if got <= 0 || math.IsNaN(float64(got)) || math.IsInf(float64(got), 0) {
		t.Fatalf("expected small positive fitness, got=%v", got)
	}
}

func TestParseAggregation(t *testing.T) {
	cases := map[string]Aggregation{"": AbsoluteError, "absolute": AbsoluteError, "MSE": SquaredError, "squared": SquaredError}
	for name, want := range cases {
		got, err := ParseAggregation(name)
		if err != nil {
			t.Fatalf("parse %q: %v", name, err)
		}
		if got != want {
			t.Fatalf("parse %q: got=%s want=%s", name, got, want)
		}
	}
	if _, err := ParseAggregation("huber"); err == nil {
		t.Fatal("expected unsupported aggregation error")
	}
}

func TestNewDatasetScapeRejectsInvalidInput(t *testing.T) {
	if _, err := NewDatasetScape("", nil, AbsoluteError); err == nil {
		t.Fatal("expected empty dataset error")
	}
	if _, err := NewDatasetScape("", doubleDataset(), Aggregation(7)); err == nil {
		t.Fatal("expected unsupported aggregation error")
	}
}
