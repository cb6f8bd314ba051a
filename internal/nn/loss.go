package nn

import (
	"fmt"
	"math"

	"github.com/kiln-ml/kiln/internal/tensor"
)

// MSELoss is the mean squared error criterion: mean((pred - target)^2).
type MSELoss struct{}

// NewMSELoss creates an MSE criterion.
func NewMSELoss() *MSELoss {
	return &MSELoss{}
}

// Loss computes the scalar MSE between predictions and targets.
func (*MSELoss) Loss(pred, target *tensor.Tensor) float64 {
	if !pred.Shape().Equal(target.Shape()) {
		panic(fmt.Sprintf("MSELoss: shape mismatch %v vs %v", pred.Shape(), target.Shape()))
	}
	var sum float64
	p, t := pred.Data(), target.Data()
	for i := range p {
		d := float64(p[i] - t[i])
		sum += d * d
	}
	return sum / float64(len(p))
}

// Grad computes dLoss/dPred = 2 * (pred - target) / n.
func (*MSELoss) Grad(pred, target *tensor.Tensor) *tensor.Tensor {
	return pred.Sub(target).MulScalar(2 / float32(pred.NumElements()))
}

// CrossEntropyLoss is the softmax cross-entropy criterion for classification.
// Predictions are raw logits [batch, classes]; targets hold the class index
// per sample, shape [batch].
type CrossEntropyLoss struct{}

// NewCrossEntropyLoss creates a cross-entropy criterion.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return &CrossEntropyLoss{}
}

// softmaxRows computes a numerically stable row-wise softmax of 2-D logits.
func softmaxRows(logits *tensor.Tensor) *tensor.Tensor {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("CrossEntropyLoss: expected 2-D logits, got %v", shape))
	}
	out := logits.Clone()
	data := out.Data()
	classes := shape[1]
	for b := 0; b < shape[0]; b++ {
		row := data[b*classes : (b+1)*classes]
		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		var sum float64
		for i, v := range row {
			e := math.Exp(float64(v - maxVal))
			row[i] = float32(e)
			sum += e
		}
		for i := range row {
			row[i] /= float32(sum)
		}
	}
	return out
}

func targetIndex(target *tensor.Tensor, b, classes int) int {
	idx := int(target.Data()[b])
	if idx < 0 || idx >= classes {
		panic(fmt.Sprintf("CrossEntropyLoss: class index %d out of range [0, %d)", idx, classes))
	}
	return idx
}

// Loss computes mean(-log softmax(pred)[target]).
func (*CrossEntropyLoss) Loss(pred, target *tensor.Tensor) float64 {
	probs := softmaxRows(pred)
	batch, classes := pred.Shape()[0], pred.Shape()[1]
	if target.NumElements() != batch {
		panic(fmt.Sprintf("CrossEntropyLoss: expected %d targets, got %v", batch, target.Shape()))
	}

	var sum float64
	const eps = 1e-12
	for b := 0; b < batch; b++ {
		p := float64(probs.At(b, targetIndex(target, b, classes)))
		sum += -math.Log(p + eps)
	}
	return sum / float64(batch)
}

// Grad computes dLoss/dLogits = (softmax(pred) - onehot(target)) / batch.
func (*CrossEntropyLoss) Grad(pred, target *tensor.Tensor) *tensor.Tensor {
	probs := softmaxRows(pred)
	batch, classes := pred.Shape()[0], pred.Shape()[1]

	data := probs.Data()
	for b := 0; b < batch; b++ {
		data[b*classes+targetIndex(target, b, classes)] -= 1
	}
	return probs.MulScalar(1 / float32(batch))
}
