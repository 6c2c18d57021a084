package train

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMSELoss_Loss(t *testing.T) {
	l := NewMSELoss()

	pred := mat.NewDense(2, 1, []float64{1, 3})
	target := mat.NewDense(2, 1, []float64{0, 1})

	// ((1-0)² + (3-1)²) / 2 = 2.5
	loss, err := l.Loss(pred, target)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, loss, 1e-12)
}

func TestMSELoss_PerfectPrediction(t *testing.T) {
	l := NewMSELoss()
	pred := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})

	loss, err := l.Loss(pred, pred)
	require.NoError(t, err)
	assert.Zero(t, loss)
}

func TestMSELoss_Grad(t *testing.T) {
	l := NewMSELoss()

	pred := mat.NewDense(2, 1, []float64{1, 3})
	target := mat.NewDense(2, 1, []float64{0, 1})

	grad, err := l.Grad(pred, target)
	require.NoError(t, err)

	// 2*(pred-target)/N, N=2
	assert.InDelta(t, 1.0, grad.At(0, 0), 1e-12)
	assert.InDelta(t, 2.0, grad.At(1, 0), 1e-12)
}

func TestMSELoss_ShapeMismatch(t *testing.T) {
	l := NewMSELoss()

	_, err := l.Loss(mat.NewDense(2, 1, nil), mat.NewDense(3, 1, nil))
	assert.Error(t, err)

	_, err = l.Grad(mat.NewDense(2, 2, nil), mat.NewDense(2, 1, nil))
	assert.Error(t, err)
}

func TestCrossEntropyLoss_Loss(t *testing.T) {
	l := NewCrossEntropyLoss()

	// 一様なロジットなら損失は log(num_classes)
	pred := mat.NewDense(2, 3, []float64{0, 0, 0, 0, 0, 0})
	target := mat.NewDense(2, 1, []float64{0, 2})

	loss, err := l.Loss(pred, target)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(3), loss, 1e-12)
}

func TestCrossEntropyLoss_ConfidentCorrect(t *testing.T) {
	l := NewCrossEntropyLoss()

	// 正解クラスのロジットが十分大きければ損失はほぼ0
	pred := mat.NewDense(1, 2, []float64{50, 0})
	target := mat.NewDense(1, 1, []float64{0})

	loss, err := l.Loss(pred, target)
	require.NoError(t, err)
	assert.Less(t, loss, 1e-12)
}

func TestCrossEntropyLoss_Grad(t *testing.T) {
	l := NewCrossEntropyLoss()

	pred := mat.NewDense(1, 2, []float64{0, 0})
	target := mat.NewDense(1, 1, []float64{0})

	grad, err := l.Grad(pred, target)
	require.NoError(t, err)

	// softmax = [0.5, 0.5], onehot = [1, 0] → grad = [-0.5, 0.5]
	assert.InDelta(t, -0.5, grad.At(0, 0), 1e-12)
	assert.InDelta(t, 0.5, grad.At(0, 1), 1e-12)
}

func TestCrossEntropyLoss_GradSumsToZero(t *testing.T) {
	l := NewCrossEntropyLoss()

	pred := mat.NewDense(2, 3, []float64{1.5, -0.3, 0.8, 2.1, 0.2, -1.0})
	target := mat.NewDense(2, 1, []float64{2, 0})

	grad, err := l.Grad(pred, target)
	require.NoError(t, err)

	// 各行の勾配の和は0（softmaxの性質）
	for i := 0; i < 2; i++ {
		var sum float64
		for j := 0; j < 3; j++ {
			sum += grad.At(i, j)
		}
		assert.InDelta(t, 0, sum, 1e-12)
	}
}

func TestCrossEntropyLoss_InvalidClass(t *testing.T) {
	l := NewCrossEntropyLoss()
	pred := mat.NewDense(1, 2, []float64{0, 0})

	_, err := l.Loss(pred, mat.NewDense(1, 1, []float64{5}))
	assert.Error(t, err)

	_, err = l.Grad(pred, mat.NewDense(1, 1, []float64{-1}))
	assert.Error(t, err)
}

func TestCrossEntropyLoss_TargetShape(t *testing.T) {
	l := NewCrossEntropyLoss()
	pred := mat.NewDense(2, 2, nil)

	_, err := l.Loss(pred, mat.NewDense(2, 2, nil))
	assert.Error(t, err, "target must be a single column")
}

func TestCrossEntropyLoss_LargeLogitsStable(t *testing.T) {
	l := NewCrossEntropyLoss()

	pred := mat.NewDense(1, 2, []float64{1000, 999})
	target := mat.NewDense(1, 1, []float64{0})

	loss, err := l.Loss(pred, target)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(loss))
	assert.False(t, math.IsInf(loss, 0))
}
