package metrics

import (
	"fmt"
	"sort"

	"github.com/kiln-ml/kiln/internal/tensor"
)

// Phase partitions accumulators into the two loop namespaces.
type Phase string

const (
	// Train is the training-phase namespace.
	Train Phase = "train"
	// Test is the evaluation-phase namespace.
	Test Phase = "test"
)

// Key addresses one accumulator instance: a (phase, name) pair.
type Key struct {
	Phase Phase
	Name  string
}

func (k Key) String() string {
	return string(k.Phase) + "_" + k.Name
}

// Registry holds one accumulator instance per registered name and phase.
// Registering a name creates two independent instances, so updates and
// resets in one phase can never contaminate the other.
type Registry struct {
	metrics map[Key]Metric
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{metrics: make(map[Key]Metric)}
}

// Register creates a train and a test accumulator for name, each produced
// by a separate factory call.
func (r *Registry) Register(name string, factory Factory) {
	r.metrics[Key{Train, name}] = factory()
	r.metrics[Key{Test, name}] = factory()
}

// Reset resets every accumulator in the given phase. The empty phase
// resets everything. A phase with no accumulators matches nothing; that
// silent no-op is deliberate.
func (r *Registry) Reset(phase Phase) {
	for key, m := range r.metrics {
		if phase == "" || key.Phase == phase {
			m.Reset()
		}
	}
}

// Update feeds one batch result into every accumulator of the given phase:
// loss accumulators receive the scalar loss, prediction accumulators the
// (output, target) pair.
func (r *Registry) Update(output, target *tensor.Tensor, loss float64, phase Phase) {
	for key, m := range r.metrics {
		if phase != "" && key.Phase != phase {
			continue
		}
		switch acc := m.(type) {
		case LossMetric:
			acc.UpdateLoss(loss)
		case PredictionMetric:
			acc.Update(output, target)
		}
	}
}

// Value returns the current aggregate of one accumulator.
func (r *Registry) Value(phase Phase, name string) (float64, error) {
	m, ok := r.metrics[Key{phase, name}]
	if !ok {
		return 0, fmt.Errorf("metric %q not registered", Key{phase, name})
	}
	return m.Value(), nil
}

// Snapshot returns the current value of every accumulator, keyed by the
// flat "phase_name" form used in training histories.
func (r *Registry) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(r.metrics))
	for key, m := range r.metrics {
		out[key.String()] = m.Value()
	}
	return out
}

// Names returns the registered metric names, sorted, without phase prefixes.
func (r *Registry) Names() []string {
	seen := map[string]bool{}
	for key := range r.metrics {
		seen[key.Name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
