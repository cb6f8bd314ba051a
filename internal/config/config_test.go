package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiln-ml/kiln/internal/tensor"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "epochs: 3\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Epochs)
	assert.Equal(t, 32, cfg.BatchSize)
	assert.Equal(t, "sgd", cfg.Optimizer)
	assert.Equal(t, float32(0.01), cfg.LR)
	assert.Equal(t, 1, cfg.Iterations)
}

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
epochs: 5
batch_size: 16
workers: 4
optimizer: adam
lr: 0.001
iterations: 20
average_predictions: 10
half: true
device: cpu
seed: 42
checkpoint_path: out/model.kiln
plot_path: out/loss.png
`))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Epochs)
	assert.Equal(t, 16, cfg.BatchSize)
	assert.Equal(t, "adam", cfg.Optimizer)
	assert.Equal(t, 20, cfg.Iterations)
	assert.True(t, cfg.Half)
	assert.Equal(t, int64(42), cfg.Seed)

	dev, err := cfg.TensorDevice()
	require.NoError(t, err)
	assert.Equal(t, tensor.CPU, dev)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"zero epochs", "epochs: 0\n"},
		{"zero batch size", "batch_size: 0\n"},
		{"negative workers", "workers: -1\n"},
		{"zero iterations", "iterations: 0\n"},
		{"zero average predictions", "average_predictions: 0\n"},
		{"bad optimizer", "optimizer: rmsprop\n"},
		{"bad device", "device: tpu\n"},
		{"negative lr", "lr: -0.5\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
