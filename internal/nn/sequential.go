package nn

import (
	"fmt"

	"github.com/kiln-ml/kiln/internal/tensor"
)

// Sequential chains modules, feeding each module's output into the next.
//
// It satisfies the orchestration layer's full model contract: forward and
// backward passes, parameter iteration, train/eval mode switching and state
// snapshot/restore.
type Sequential struct {
	modules []Module
}

// NewSequential creates a container running modules in order.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{modules: modules}
}

func (s *Sequential) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := input
	for _, m := range s.modules {
		out = m.Forward(out)
	}
	return out
}

func (s *Sequential) Backward(grad *tensor.Tensor) *tensor.Tensor {
	out := grad
	for i := len(s.modules) - 1; i >= 0; i-- {
		out = s.modules[i].Backward(out)
	}
	return out
}

func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, m := range s.modules {
		params = append(params, m.Parameters()...)
	}
	return params
}

func (s *Sequential) SetTraining(training bool) {
	for _, m := range s.modules {
		m.SetTraining(training)
	}
}

// StateDict returns the container's parameters keyed "index.name"
// (e.g. "0.weight", "2.bias"). The values are the live parameter tensors;
// callers that need a snapshot must deep-copy them.
func (s *Sequential) StateDict() map[string]*tensor.Tensor {
	state := make(map[string]*tensor.Tensor)
	for i, m := range s.modules {
		for _, p := range m.Parameters() {
			state[fmt.Sprintf("%d.%s", i, p.Name())] = p.Tensor()
		}
	}
	return state
}

// LoadStateDict copies values from state into the container's parameters.
// Every parameter must be present with a matching shape.
func (s *Sequential) LoadStateDict(state map[string]*tensor.Tensor) error {
	for i, m := range s.modules {
		for _, p := range m.Parameters() {
			key := fmt.Sprintf("%d.%s", i, p.Name())
			src, ok := state[key]
			if !ok {
				return fmt.Errorf("load state dict: missing parameter %q", key)
			}
			if !src.Shape().Equal(p.Tensor().Shape()) {
				return fmt.Errorf("load state dict: shape mismatch for %q: %v vs %v",
					key, src.Shape(), p.Tensor().Shape())
			}
			copy(p.Tensor().Data(), src.Data())
		}
	}
	return nil
}

// ResetParameters re-initializes every resettable submodule in place.
func (s *Sequential) ResetParameters() {
	for _, m := range s.modules {
		if r, ok := m.(Resettable); ok {
			r.ResetParameters()
		}
	}
}
