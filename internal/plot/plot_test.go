package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLossCurve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loss.png")
	err := SaveLossCurve(path, "training run", map[string][]float64{
		"train_loss": {1.0, 0.6, 0.4, 0.3},
		"test_loss":  {1.1, 0.7, 0.5, 0.45},
	})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSaveLossCurveEmptySeries(t *testing.T) {
	err := SaveLossCurve(filepath.Join(t.TempDir(), "loss.png"), "empty", nil)
	assert.Error(t, err)
}
