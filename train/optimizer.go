package train

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gofit/core/model"
	"github.com/YuminosukeSato/gofit/pkg/errors"
)

// Optimizer updates model parameters from the gradients accumulated by
// Module.Backward. LR and SetLR exist so the scheduler can adjust the
// learning rate between epochs without knowing the optimizer type.
type Optimizer interface {
	// Step applies one update to every parameter.
	Step() error

	// ZeroGrad clears the gradients of every parameter.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float64

	// SetLR sets the learning rate.
	SetLR(lr float64)
}

// SGD implements stochastic gradient descent with optional momentum,
// weight decay and Nesterov acceleration.
type SGD struct {
	params      []*model.Parameter
	lr          float64
	momentum    float64
	weightDecay float64
	nesterov    bool
	velocities  []*mat.Dense
}

// SGDOption configures an SGD optimizer.
type SGDOption func(*SGD)

// WithMomentum sets the momentum factor (0 disables momentum).
func WithMomentum(momentum float64) SGDOption {
	return func(s *SGD) { s.momentum = momentum }
}

// WithWeightDecay sets the L2 penalty added to the gradients.
func WithWeightDecay(weightDecay float64) SGDOption {
	return func(s *SGD) { s.weightDecay = weightDecay }
}

// WithNesterov enables Nesterov momentum. Only meaningful together with
// WithMomentum.
func WithNesterov() SGDOption {
	return func(s *SGD) { s.nesterov = true }
}

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD(params []*model.Parameter, lr float64, opts ...SGDOption) (*SGD, error) {
	if lr <= 0 {
		return nil, errors.NewValidationError("lr", "must be positive", lr)
	}
	if len(params) == 0 {
		return nil, errors.NewValueError("NewSGD", "no parameters to optimize")
	}
	s := &SGD{params: params, lr: lr}
	for _, opt := range opts {
		opt(s)
	}
	if s.momentum > 0 {
		s.velocities = make([]*mat.Dense, len(params))
		for i, p := range params {
			r, c := p.Value.Dims()
			s.velocities[i] = mat.NewDense(r, c, nil)
		}
	}
	return s, nil
}

// Step implements Optimizer.Step.
func (s *SGD) Step() error {
	for idx, p := range s.params {
		r, c := p.Value.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				g := p.Grad.At(i, j)
				if s.weightDecay > 0 {
					g += s.weightDecay * p.Value.At(i, j)
				}

				step := g
				if s.momentum > 0 {
					v := s.momentum*s.velocities[idx].At(i, j) + g
					s.velocities[idx].Set(i, j, v)
					if s.nesterov {
						step = g + s.momentum*v
					} else {
						step = v
					}
				}

				p.Value.Set(i, j, p.Value.At(i, j)-s.lr*step)
			}
		}
	}
	return nil
}

// ZeroGrad implements Optimizer.ZeroGrad.
func (s *SGD) ZeroGrad() {
	model.ZeroGradAll(s.params)
}

// LR implements Optimizer.LR.
func (s *SGD) LR() float64 { return s.lr }

// SetLR implements Optimizer.SetLR.
func (s *SGD) SetLR(lr float64) { s.lr = lr }

// Adam implements the Adam optimizer with bias-corrected first and second
// moment estimates.
type Adam struct {
	params []*model.Parameter
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	step   int
	m      []*mat.Dense
	v      []*mat.Dense
}

// NewAdam creates an Adam optimizer with the usual defaults
// (beta1=0.9, beta2=0.999, eps=1e-8).
func NewAdam(params []*model.Parameter, lr float64) (*Adam, error) {
	if lr <= 0 {
		return nil, errors.NewValidationError("lr", "must be positive", lr)
	}
	if len(params) == 0 {
		return nil, errors.NewValueError("NewAdam", "no parameters to optimize")
	}

	a := &Adam{
		params: params,
		lr:     lr,
		beta1:  0.9,
		beta2:  0.999,
		eps:    1e-8,
		m:      make([]*mat.Dense, len(params)),
		v:      make([]*mat.Dense, len(params)),
	}
	for i, p := range params {
		r, c := p.Value.Dims()
		a.m[i] = mat.NewDense(r, c, nil)
		a.v[i] = mat.NewDense(r, c, nil)
	}
	return a, nil
}

// Step implements Optimizer.Step.
func (a *Adam) Step() error {
	a.step++
	bc1 := 1 - math.Pow(a.beta1, float64(a.step))
	bc2 := 1 - math.Pow(a.beta2, float64(a.step))

	for idx, p := range a.params {
		r, c := p.Value.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				g := p.Grad.At(i, j)

				m := a.beta1*a.m[idx].At(i, j) + (1-a.beta1)*g
				v := a.beta2*a.v[idx].At(i, j) + (1-a.beta2)*g*g
				a.m[idx].Set(i, j, m)
				a.v[idx].Set(i, j, v)

				mHat := m / bc1
				vHat := v / bc2

				p.Value.Set(i, j, p.Value.At(i, j)-a.lr*mHat/(math.Sqrt(vHat)+a.eps))
			}
		}
	}
	return nil
}

// ZeroGrad implements Optimizer.ZeroGrad.
func (a *Adam) ZeroGrad() {
	model.ZeroGradAll(a.params)
}

// LR implements Optimizer.LR.
func (a *Adam) LR() float64 { return a.lr }

// SetLR implements Optimizer.SetLR.
func (a *Adam) SetLR(lr float64) { a.lr = lr }

var (
	_ Optimizer = (*SGD)(nil)
	_ Optimizer = (*Adam)(nil)
)
