package train

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gofit/core/model"
)

func newTestParam(t *testing.T, value, grad float64) *model.Parameter {
	t.Helper()
	p := model.NewParameter("w", mat.NewDense(1, 1, []float64{value}))
	p.Grad.Set(0, 0, grad)
	return p
}

func TestNewSGD_Validation(t *testing.T) {
	p := newTestParam(t, 1, 0)

	_, err := NewSGD([]*model.Parameter{p}, 0)
	assert.Error(t, err, "zero lr should be rejected")

	_, err = NewSGD([]*model.Parameter{p}, -0.1)
	assert.Error(t, err, "negative lr should be rejected")

	_, err = NewSGD(nil, 0.1)
	assert.Error(t, err, "empty parameter list should be rejected")
}

func TestSGD_Step(t *testing.T) {
	p := newTestParam(t, 1.0, 0.5)
	opt, err := NewSGD([]*model.Parameter{p}, 0.1)
	require.NoError(t, err)

	require.NoError(t, opt.Step())

	// w = 1.0 - 0.1*0.5
	assert.InDelta(t, 0.95, p.Value.At(0, 0), 1e-12)
}

func TestSGD_WeightDecay(t *testing.T) {
	p := newTestParam(t, 1.0, 0.0)
	opt, err := NewSGD([]*model.Parameter{p}, 0.1, WithWeightDecay(0.1))
	require.NoError(t, err)

	require.NoError(t, opt.Step())

	// 勾配0でもL2ペナルティで縮む: w = 1.0 - 0.1*(0.1*1.0)
	assert.InDelta(t, 0.99, p.Value.At(0, 0), 1e-12)
}

func TestSGD_Momentum(t *testing.T) {
	p := newTestParam(t, 0.0, 1.0)
	opt, err := NewSGD([]*model.Parameter{p}, 1.0, WithMomentum(0.9))
	require.NoError(t, err)

	// step1: v = 1,   w = -1
	require.NoError(t, opt.Step())
	assert.InDelta(t, -1.0, p.Value.At(0, 0), 1e-12)

	// step2: v = 0.9*1 + 1 = 1.9, w = -1 - 1.9 = -2.9
	p.Grad.Set(0, 0, 1.0)
	require.NoError(t, opt.Step())
	assert.InDelta(t, -2.9, p.Value.At(0, 0), 1e-12)
}

func TestSGD_Nesterov(t *testing.T) {
	p := newTestParam(t, 0.0, 1.0)
	opt, err := NewSGD([]*model.Parameter{p}, 1.0, WithMomentum(0.9), WithNesterov())
	require.NoError(t, err)

	// v = 1, step = g + momentum*v = 1 + 0.9 = 1.9
	require.NoError(t, opt.Step())
	assert.InDelta(t, -1.9, p.Value.At(0, 0), 1e-12)
}

func TestSGD_ZeroGrad(t *testing.T) {
	p := newTestParam(t, 1.0, 0.5)
	opt, err := NewSGD([]*model.Parameter{p}, 0.1)
	require.NoError(t, err)

	opt.ZeroGrad()
	assert.Zero(t, p.Grad.At(0, 0))
}

func TestSGD_SetLR(t *testing.T) {
	p := newTestParam(t, 1.0, 0)
	opt, err := NewSGD([]*model.Parameter{p}, 0.1)
	require.NoError(t, err)

	assert.Equal(t, 0.1, opt.LR())
	opt.SetLR(0.01)
	assert.Equal(t, 0.01, opt.LR())
}

func TestNewAdam_Validation(t *testing.T) {
	p := newTestParam(t, 1, 0)

	_, err := NewAdam([]*model.Parameter{p}, 0)
	assert.Error(t, err)

	_, err = NewAdam(nil, 0.001)
	assert.Error(t, err)
}

func TestAdam_FirstStep(t *testing.T) {
	p := newTestParam(t, 1.0, 0.5)
	opt, err := NewAdam([]*model.Parameter{p}, 0.001)
	require.NoError(t, err)

	require.NoError(t, opt.Step())

	// バイアス補正により初回ステップはほぼ lr*sign(g)
	assert.InDelta(t, 1.0-0.001, p.Value.At(0, 0), 1e-6)
}

func TestAdam_ConvergesOnQuadratic(t *testing.T) {
	// f(w) = (w-3)², 勾配 2(w-3)
	p := newTestParam(t, 0.0, 0)
	opt, err := NewAdam([]*model.Parameter{p}, 0.1)
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		w := p.Value.At(0, 0)
		p.Grad.Set(0, 0, 2*(w-3))
		require.NoError(t, opt.Step())
	}

	assert.InDelta(t, 3.0, p.Value.At(0, 0), 0.05)
}
