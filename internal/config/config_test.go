package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTrainDefaults(t *testing.T) {
	cfg, err := LoadTrain("", nil)
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.False(t, cfg.Synthetic)
	assert.Equal(t, 5, cfg.Epochs)
	assert.Equal(t, 32, cfg.BatchSize)
	assert.Equal(t, 0.01, cfg.LR)
	assert.Equal(t, 0.9, cfg.Momentum)
	assert.Equal(t, []int{128}, cfg.Hidden)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Empty(t, cfg.Checkpoint)
}

func TestLoadTrainFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.yaml")
	yaml := `
epochs: 20
batch-size: 64
lr: 0.05
hidden: [400, 200, 100]
checkpoint: model.pct
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadTrain(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Epochs)
	assert.Equal(t, 64, cfg.BatchSize)
	assert.Equal(t, 0.05, cfg.LR)
	assert.Equal(t, []int{400, 200, 100}, cfg.Hidden)
	assert.Equal(t, "model.pct", cfg.Checkpoint)

	// Unset keys keep their defaults.
	assert.Equal(t, 0.9, cfg.Momentum)
}

func TestLoadTrainMissingFile(t *testing.T) {
	_, err := LoadTrain(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadTrainFromEnv(t *testing.T) {
	t.Setenv("PERCEPT_EPOCHS", "7")
	t.Setenv("PERCEPT_BATCH_SIZE", "16")

	cfg, err := LoadTrain("", nil)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Epochs)
	assert.Equal(t, 16, cfg.BatchSize)
}

func TestLoadTrainFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.yaml")
	require.NoError(t, os.WriteFile(path, []byte("epochs: 20\n"), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("epochs", 5, "")
	require.NoError(t, flags.Set("epochs", "3"))

	cfg, err := LoadTrain(path, flags)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Epochs)
}

func TestLoadTrainUnchangedFlagDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.yaml")
	require.NoError(t, os.WriteFile(path, []byte("epochs: 20\n"), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("epochs", 5, "")

	cfg, err := LoadTrain(path, flags)
	require.NoError(t, err)

	// A flag left at its default loses to the config file.
	assert.Equal(t, 20, cfg.Epochs)
}

func TestTrainValidate(t *testing.T) {
	valid := Train{Epochs: 5, BatchSize: 32, LR: 0.01, Momentum: 0.9, Hidden: []int{128}}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Train)
	}{
		{"zero epochs", func(c *Train) { c.Epochs = 0 }},
		{"zero batch size", func(c *Train) { c.BatchSize = 0 }},
		{"zero lr", func(c *Train) { c.LR = 0 }},
		{"negative momentum", func(c *Train) { c.Momentum = -0.1 }},
		{"momentum of one", func(c *Train) { c.Momentum = 1.0 }},
		{"zero hidden width", func(c *Train) { c.Hidden = []int{128, 0} }},
		{"validation too large", func(c *Train) { c.Validation = 1.0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
