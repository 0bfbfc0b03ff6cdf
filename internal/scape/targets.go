package scape

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"stackgp/internal/model"
	"stackgp/internal/targetid"
)

var (
	ErrTargetExists   = errors.New("target already registered")
	ErrTargetNotFound = errors.New("target not found")
)

// Target builds a dataset with the given number of samples.
type Target struct {
	Name        string
	Description string
	Build       func(samples int) model.Dataset
}

var targetRegistry = struct {
	mu sync.RWMutex
	m  map[string]Target
}{
	m: make(map[string]Target),
}

func init() {
	for _, target := range []Target{
		{Name: "quadratic", Description: "y = 2x^2", Build: univariate(func(x int32) int32 { return 2 * x * x })},
		{Name: "linear", Description: "y = 3x + 1", Build: univariate(func(x int32) int32 { return 3*x + 1 })},
		{Name: "cubic", Description: "y = x^3 - x", Build: univariate(func(x int32) int32 { return x*x*x - x })},
		{Name: "sum", Description: "z = x + y", Build: bivariate(func(x, y int32) int32 { return x + y })},
		{Name: "product", Description: "z = x * y", Build: bivariate(func(x, y int32) int32 { return x * y })},
	} {
		if err := RegisterTarget(target); err != nil {
			panic(err)
		}
	}
}

// RegisterTarget adds a target under its normalized name.
func RegisterTarget(target Target) error {
	target.Name = targetid.Normalize(target.Name)
	if target.Name == "" {
		return errors.New("target name is required")
	}
	if target.Build == nil {
		return errors.New("target builder is required")
	}

	targetRegistry.mu.Lock()
	defer targetRegistry.mu.Unlock()

	if _, exists := targetRegistry.m[target.Name]; exists {
		return fmt.Errorf("%w: %s", ErrTargetExists, target.Name)
	}
	targetRegistry.m[target.Name] = target
	return nil
}

func ResolveTarget(name string) (Target, error) {
	targetRegistry.mu.RLock()
	defer targetRegistry.mu.RUnlock()

	target, ok := targetRegistry.m[targetid.Normalize(name)]
	if !ok {
		return Target{}, fmt.Errorf("%w: %s", ErrTargetNotFound, name)
	}
	return target, nil
}

// ListTargets returns registered targets sorted by name.
func ListTargets() []Target {
	targetRegistry.mu.RLock()
	defer targetRegistry.mu.RUnlock()

	out := make([]Target, 0, len(targetRegistry.m))
	for _, target := range targetRegistry.m {
		out = append(out, target)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// BuildTarget resolves name and builds samples rows.
func BuildTarget(name string, samples int) (model.Dataset, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sample count must be > 0")
	}
	target, err := ResolveTarget(name)
	if err != nil {
		return nil, err
	}
	return target.Build(samples), nil
}

func univariate(fn func(x int32) int32) func(int) model.Dataset {
	return func(samples int) model.Dataset {
		data := make(model.Dataset, 0, samples)
		for i := 0; i < samples; i++ {
			x := int32(i)
			data = append(data, model.Row{x, fn(x)})
		}
		return data
	}
}

// bivariate walks a square grid centered on zero.
func bivariate(fn func(x, y int32) int32) func(int) model.Dataset {
	return func(samples int) model.Dataset {
		side := 1
		for side*side < samples {
			side++
		}
		half := int32(side / 2)
		data := make(model.Dataset, 0, samples)
		for i := 0; i < samples; i++ {
			x := int32(i/side) - half
			y := int32(i%side) - half
			data = append(data, model.Row{x, y, fn(x, y)})
		}
		return data
	}
}
