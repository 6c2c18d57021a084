package models

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gofit/core/model"
	"github.com/YuminosukeSato/gofit/pkg/errors"
)

// MLP は隠れ層1層（ReLU活性化）の多層パーセプトロン
// Forward: h = ReLU(XW1 + b1), y = hW2 + b2
type MLP struct {
	hidden *Linear
	output *Linear

	lastPre *mat.Dense // 活性化前の隠れ層出力（ReLU勾配のマスクに使用）
	lastAct *mat.Dense // 活性化後の隠れ層出力

	training bool
}

// NewMLP は in→hidden→out 構成のMLPを作成する
func NewMLP(inFeatures, hiddenUnits, outFeatures int, seed int64) (*MLP, error) {
	if hiddenUnits < 1 {
		return nil, errors.NewValidationError("hiddenUnits", "must be positive", hiddenUnits)
	}
	hidden, err := NewLinear(inFeatures, hiddenUnits, seed)
	if err != nil {
		return nil, err
	}
	output, err := NewLinear(hiddenUnits, outFeatures, seed+1)
	if err != nil {
		return nil, err
	}
	return &MLP{hidden: hidden, output: output, training: true}, nil
}

// Forward implements model.Module.
func (m *MLP) Forward(X mat.Matrix) (mat.Matrix, error) {
	pre, err := m.hidden.Forward(X)
	if err != nil {
		return nil, err
	}
	m.lastPre = mat.DenseCopyOf(pre)

	n, h := m.lastPre.Dims()
	act := mat.NewDense(n, h, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < h; j++ {
			if v := m.lastPre.At(i, j); v > 0 {
				act.Set(i, j, v)
			}
		}
	}
	m.lastAct = act

	return m.output.Forward(act)
}

// Backward implements model.Module.
func (m *MLP) Backward(gradOut mat.Matrix) error {
	if m.lastPre == nil {
		return errors.NewModelError("MLP.Backward", "Backward called before Forward", nil)
	}

	if err := m.output.Backward(gradOut); err != nil {
		return err
	}
	gradAct := m.output.InputGrad(gradOut)

	// ReLU: 活性化前が正の位置だけ勾配を通す
	n, h := gradAct.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < h; j++ {
			if m.lastPre.At(i, j) <= 0 {
				gradAct.Set(i, j, 0)
			}
		}
	}

	return m.hidden.Backward(gradAct)
}

// Parameters implements model.Module.
func (m *MLP) Parameters() []*model.Parameter {
	return append(m.hidden.Parameters(), m.output.Parameters()...)
}

// ZeroGrad implements model.Module.
func (m *MLP) ZeroGrad() {
	model.ZeroGradAll(m.Parameters())
}

// TrainMode implements model.Module.
func (m *MLP) TrainMode() {
	m.training = true
	m.hidden.TrainMode()
	m.output.TrainMode()
}

// EvalMode implements model.Module.
func (m *MLP) EvalMode() {
	m.training = false
	m.hidden.EvalMode()
	m.output.EvalMode()
}

// IsTraining implements model.Module.
func (m *MLP) IsTraining() bool { return m.training }

var _ model.Module = (*MLP)(nil)
