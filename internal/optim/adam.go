package optim

import (
	"math"

	"github.com/kiln-ml/kiln/internal/nn"
	"github.com/kiln-ml/kiln/internal/tensor"
)

// Adam implements the Adam optimizer (adaptive moment estimation) with
// bias-corrected first and second moment estimates.
type Adam struct {
	params []*nn.Parameter
	lr     float32
	beta1  float32
	beta2  float32
	eps    float32
	step   int

	m map[*nn.Parameter]*tensor.Tensor
	v map[*nn.Parameter]*tensor.Tensor
}

// AdamConfig holds configuration for the Adam optimizer.
type AdamConfig struct {
	LR    float32 // learning rate (default 0.001)
	Beta1 float32 // first moment decay (default 0.9)
	Beta2 float32 // second moment decay (default 0.999)
	Eps   float32 // numerical stability term (default 1e-8)
}

// NewAdam creates an Adam optimizer bound to params.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Beta1 == 0 {
		config.Beta1 = 0.9
	}
	if config.Beta2 == 0 {
		config.Beta2 = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Beta1,
		beta2:  config.Beta2,
		eps:    config.Eps,
		m:      make(map[*nn.Parameter]*tensor.Tensor),
		v:      make(map[*nn.Parameter]*tensor.Tensor),
	}
}

// Step applies one Adam update to every parameter with a gradient.
func (a *Adam) Step() {
	a.step++
	correction1 := 1 - float32(math.Pow(float64(a.beta1), float64(a.step)))
	correction2 := 1 - float32(math.Pow(float64(a.beta2), float64(a.step)))

	for _, param := range a.params {
		grad := param.Grad()
		if grad == nil {
			continue
		}

		m, ok := a.m[param]
		if !ok {
			m = tensor.Zeros(param.Tensor().Shape())
			a.m[param] = m
			a.v[param] = tensor.Zeros(param.Tensor().Shape())
		}
		v := a.v[param]

		mData, vData := m.Data(), v.Data()
		gData := grad.Data()
		pData := param.Tensor().Data()
		for i := range pData {
			g := gData[i]
			mData[i] = a.beta1*mData[i] + (1-a.beta1)*g
			vData[i] = a.beta2*vData[i] + (1-a.beta2)*g*g

			mHat := mData[i] / correction1
			vHat := vData[i] / correction2
			pData[i] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	for _, param := range a.params {
		param.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (a *Adam) LR() float32 {
	return a.lr
}
