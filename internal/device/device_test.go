package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbe(t *testing.T) {
	info := Probe()
	assert.Positive(t, info.LogicalCores)
	// Accelerator support is not wired on any host yet.
	assert.False(t, info.Accelerator)
}
