package nn

import (
	"math"
	"math/rand"

	"github.com/kiln-ml/kiln/internal/tensor"
)

// xavierUniform initializes a tensor with the Glorot/Xavier uniform scheme:
// values drawn from U(-limit, limit) with limit = sqrt(6 / (fanIn + fanOut)).
func xavierUniform(shape tensor.Shape, fanIn, fanOut int) *tensor.Tensor {
	limit := float32(math.Sqrt(6.0 / float64(fanIn+fanOut)))
	t := tensor.Zeros(shape)
	data := t.Data()
	for i := range data {
		data[i] = (rand.Float32()*2 - 1) * limit
	}
	return t
}
