// Package models は学習ループで使用できる参照モデルを提供する。
// いずれも model.Module を実装し、勾配は手計算のBackwardで求める。
package models

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gofit/core/model"
	"github.com/YuminosukeSato/gofit/pkg/errors"
)

// Linear は全結合の線形変換 y = XW + b
type Linear struct {
	weight *model.Parameter // inFeatures × outFeatures
	bias   *model.Parameter // 1 × outFeatures

	inFeatures  int
	outFeatures int

	lastX    *mat.Dense // Backward用に直前のForward入力を保持
	training bool
}

// NewLinear は指定した入出力次元のLinearを作成する
// 重みはXavier一様分布で初期化し、seedで再現可能にする
func NewLinear(inFeatures, outFeatures int, seed int64) (*Linear, error) {
	if inFeatures < 1 {
		return nil, errors.NewValidationError("inFeatures", "must be positive", inFeatures)
	}
	if outFeatures < 1 {
		return nil, errors.NewValidationError("outFeatures", "must be positive", outFeatures)
	}

	rng := rand.New(rand.NewSource(seed))
	limit := math.Sqrt(6.0 / float64(inFeatures+outFeatures))

	w := mat.NewDense(inFeatures, outFeatures, nil)
	for i := 0; i < inFeatures; i++ {
		for j := 0; j < outFeatures; j++ {
			w.Set(i, j, (rng.Float64()*2-1)*limit)
		}
	}

	return &Linear{
		weight:      model.NewParameter("weight", w),
		bias:        model.NewParameter("bias", mat.NewDense(1, outFeatures, nil)),
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		training:    true,
	}, nil
}

// Forward implements model.Module.
func (l *Linear) Forward(X mat.Matrix) (mat.Matrix, error) {
	n, d := X.Dims()
	if d != l.inFeatures {
		return nil, errors.NewDimensionError("Linear.Forward", l.inFeatures, d, 1)
	}

	l.lastX = mat.DenseCopyOf(X)

	out := mat.NewDense(n, l.outFeatures, nil)
	out.Mul(X, l.weight.Value)
	for i := 0; i < n; i++ {
		for j := 0; j < l.outFeatures; j++ {
			out.Set(i, j, out.At(i, j)+l.bias.Value.At(0, j))
		}
	}
	return out, nil
}

// Backward implements model.Module.
// gradOut は出力に対する損失勾配 (n × outFeatures)
func (l *Linear) Backward(gradOut mat.Matrix) error {
	if l.lastX == nil {
		return errors.NewModelError("Linear.Backward", "Backward called before Forward", nil)
	}
	n, c := gradOut.Dims()
	xr, _ := l.lastX.Dims()
	if n != xr || c != l.outFeatures {
		return errors.NewDimensionError("Linear.Backward", xr*l.outFeatures, n*c, 0)
	}

	// dW = Xᵀ·gradOut, db = Σ_n gradOut
	var dW mat.Dense
	dW.Mul(l.lastX.T(), gradOut)
	l.weight.Grad.Add(l.weight.Grad, &dW)

	for j := 0; j < l.outFeatures; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += gradOut.At(i, j)
		}
		l.bias.Grad.Set(0, j, l.bias.Grad.At(0, j)+sum)
	}
	return nil
}

// InputGrad は直前のBackwardに対応する入力側勾配 gradOut·Wᵀ を計算する
// 上位レイヤーへ勾配を伝播させる合成モデルが使用する
func (l *Linear) InputGrad(gradOut mat.Matrix) *mat.Dense {
	var gradIn mat.Dense
	gradIn.Mul(gradOut, l.weight.Value.T())
	return &gradIn
}

// Parameters implements model.Module.
func (l *Linear) Parameters() []*model.Parameter {
	return []*model.Parameter{l.weight, l.bias}
}

// ZeroGrad implements model.Module.
func (l *Linear) ZeroGrad() {
	model.ZeroGradAll(l.Parameters())
}

// TrainMode implements model.Module.
func (l *Linear) TrainMode() { l.training = true }

// EvalMode implements model.Module.
func (l *Linear) EvalMode() { l.training = false }

// IsTraining implements model.Module.
func (l *Linear) IsTraining() bool { return l.training }

// Weight returns the weight parameter.
func (l *Linear) Weight() *model.Parameter { return l.weight }

// Bias returns the bias parameter.
func (l *Linear) Bias() *model.Parameter { return l.bias }

var _ model.Module = (*Linear)(nil)
