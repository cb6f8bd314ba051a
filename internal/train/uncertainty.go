package train

import (
	"math"

	"github.com/kiln-ml/kiln/internal/tensor"
)

// Variance computes, for a stacked prediction of shape [N, ..., iterations],
// the per-element variance across the trailing iterations axis, producing a
// tensor of shape [N, ...]. Iterations occupy stride-1 blocks under the
// stacked layout, so each output element reduces one contiguous run.
func Variance(pred *tensor.Tensor) *tensor.Tensor {
	shape := pred.Shape()
	iters := shape[len(shape)-1]
	outShape := shape[:len(shape)-1].Clone()

	out := tensor.Zeros(outShape)
	src := pred.Data()
	dst := out.Data()
	for i := range dst {
		block := src[i*iters : (i+1)*iters]
		var mean float64
		for _, v := range block {
			mean += float64(v)
		}
		mean /= float64(iters)
		var acc float64
		for _, v := range block {
			d := float64(v) - mean
			acc += d * d
		}
		dst[i] = float32(acc / float64(iters))
	}
	return out
}

// Entropy scores a stacked classification prediction of shape
// [N, C, iterations], whose class axis holds probabilities, by averaging
// the distributions over iterations and taking the Shannon entropy of the
// mean, yielding one score per sample of shape [N]. Higher is more
// uncertain.
func Entropy(pred *tensor.Tensor) *tensor.Tensor {
	mean := pred.Mean(len(pred.Shape()) - 1)
	shape := mean.Shape()
	n, classes := shape[0], shape[1]

	out := tensor.Zeros(tensor.Shape{n})
	src := mean.Data()
	dst := out.Data()
	for i := 0; i < n; i++ {
		var h float64
		for c := 0; c < classes; c++ {
			p := float64(src[i*classes+c])
			if p > 0 {
				h -= p * math.Log(p)
			}
		}
		dst[i] = float32(h)
	}
	return out
}
