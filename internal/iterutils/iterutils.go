// Package iterutils provides generic traversal over structured prediction
// values: a single tensor, a slice of tensors, or a named collection.
// Reshape, detach, precision-cast and host-transfer steps are applied
// uniformly to every leaf through MapOnTensors.
package iterutils

import (
	"github.com/kiln-ml/kiln/internal/tensor"
)

// MapOnTensors applies fn to every tensor leaf of value, preserving the
// surrounding structure. Non-tensor leaves are returned unchanged.
func MapOnTensors(value any, fn func(*tensor.Tensor) *tensor.Tensor) any {
	switch v := value.(type) {
	case *tensor.Tensor:
		return fn(v)
	case []*tensor.Tensor:
		out := make([]*tensor.Tensor, len(v))
		for i, t := range v {
			out[i] = fn(t)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = MapOnTensors(e, fn)
		}
		return out
	case map[string]*tensor.Tensor:
		out := make(map[string]*tensor.Tensor, len(v))
		for k, t := range v {
			out[k] = fn(t)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = MapOnTensors(e, fn)
		}
		return out
	default:
		return value
	}
}

// MapOnTensorsErr is MapOnTensors for transforms that can fail, e.g. device
// moves. The first error aborts the traversal.
func MapOnTensorsErr(value any, fn func(*tensor.Tensor) (*tensor.Tensor, error)) (any, error) {
	var firstErr error
	out := MapOnTensors(value, func(t *tensor.Tensor) *tensor.Tensor {
		if firstErr != nil {
			return t
		}
		mapped, err := fn(t)
		if err != nil {
			firstErr = err
			return t
		}
		return mapped
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
