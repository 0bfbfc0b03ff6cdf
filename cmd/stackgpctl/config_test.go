package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"stackgp/internal/evo"
	"stackgp/internal/model"
	"stackgp/internal/scape"
)

func TestLoadRunConfigDefaults(t *testing.T) {
	cfg, err := loadRunConfig("")
	require.NoError(t, err)
	require.Equal(t, defaultRunConfig(), cfg)

	req, err := cfg.request()
	require.NoError(t, err)
	require.Empty(t, req.Target)
	require.Empty(t, req.DatasetPath)
	require.Equal(t, 100, req.Samples)
	require.Equal(t, 1000, req.Properties.PopulationSize)
	require.Equal(t, evo.SelectionRoulette, req.Properties.Selection)
	require.Equal(t, scape.AbsoluteError, req.Properties.Aggregation)
	require.Len(t, req.Properties.Vocabulary, 5)
}

func TestLoadRunConfigOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "target": "cubic",
  "generations": 12,
  "properties": {"cross_over_rate": 0.5, "vocabulary": "neg,sum,multiply", "aggregation": "mse"}
}`), 0o644))

	cfg, err := loadRunConfig(path)
	require.NoError(t, err)
	require.Equal(t, "cubic", cfg.Target)
	require.Equal(t, 12, cfg.Generations)
	require.Equal(t, 100, cfg.Samples, "unset keys keep defaults")
	require.Equal(t, 1000, cfg.Properties.PopulationSize)

	req, err := cfg.request()
	require.NoError(t, err)
	require.Equal(t, 0.5, req.Properties.CrossOverRate)
	require.Equal(t, scape.SquaredError, req.Properties.Aggregation)
	require.Equal(t, []model.Opcode{model.OpNeg, model.OpSum, model.OpMultiply}, req.Properties.Vocabulary)
}

func TestLoadRunConfigDatasetWithoutTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataset: linear.csv\n"), 0o644))

	cfg, err := loadRunConfig(path)
	require.NoError(t, err)
	req, err := cfg.request()
	require.NoError(t, err)
	require.Equal(t, "linear.csv", req.DatasetPath)
	require.Empty(t, req.Target)
}

func TestLoadRunConfigErrors(t *testing.T) {
	_, err := loadRunConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generations: [1, 2"), 0o644))
	_, err = loadRunConfig(path)
	require.Error(t, err)
}

func TestNewLoggerLevels(t *testing.T) {
	logger, err := newLogger(os.Stderr, "debug")
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = newLogger(os.Stderr, "chatty")
	require.Error(t, err)
}
