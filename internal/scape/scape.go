package scape

import "stackgp/internal/model"

// Scape scores programs. Higher is fitter.
type Scape interface {
	Name() string
	Score(genome model.Genome) float32
}
