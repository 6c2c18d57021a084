package model

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gofit/pkg/errors"
)

// Parameter は学習対象のパラメータとその勾配を保持する
// 勾配の計算はモジュール側のBackwardが行い、オプティマイザはGradを読んでValueを更新する
type Parameter struct {
	// Value はパラメータの現在値
	Value *mat.Dense

	// Grad は直近のBackwardで蓄積された勾配
	Grad *mat.Dense

	// Name はログ・デバッグ用のパラメータ名（例: "weight", "bias"）
	Name string
}

// NewParameter は値と同じ形のゼロ勾配を持つParameterを作成する
func NewParameter(name string, value *mat.Dense) *Parameter {
	r, c := value.Dims()
	return &Parameter{
		Name:  name,
		Value: value,
		Grad:  mat.NewDense(r, c, nil),
	}
}

// ZeroGrad は勾配をゼロクリアする
func (p *Parameter) ZeroGrad() {
	p.Grad.Zero()
}

// GradNorm は勾配のL2ノルムを返す
func (p *Parameter) GradNorm() float64 {
	var sum float64
	r, c := p.Grad.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			g := p.Grad.At(i, j)
			sum += g * g
		}
	}
	return math.Sqrt(sum)
}

// Module は学習ループが駆動するモデルのインターフェース
// 勾配の計算は各モジュールの実装に委譲される（自動微分は提供しない）
type Module interface {
	// Forward は入力に対する出力を計算する
	Forward(X mat.Matrix) (mat.Matrix, error)

	// Backward は出力側の勾配を受け取り、各Parameter.Gradに勾配を蓄積する
	// 直前のForwardの入力・中間値を使用するため、Forwardの後に呼ぶこと
	Backward(gradOut mat.Matrix) error

	// Parameters は学習対象のパラメータ一覧を返す
	Parameters() []*Parameter

	// ZeroGrad は全パラメータの勾配をゼロクリアする
	ZeroGrad()

	// TrainMode はモジュールを学習モードに設定する
	TrainMode()

	// EvalMode はモジュールを評価モードに設定する
	EvalMode()

	// IsTraining は学習モードかどうかを返す
	IsTraining() bool
}

// ZeroGradAll は複数パラメータの勾配をまとめてゼロクリアするヘルパー
func ZeroGradAll(params []*Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}

// CheckGradShapes はBackward後の勾配形状がパラメータ形状と一致するか検証する
func CheckGradShapes(op string, params []*Parameter) error {
	for _, p := range params {
		vr, vc := p.Value.Dims()
		gr, gc := p.Grad.Dims()
		if vr != gr || vc != gc {
			return errors.NewDimensionError(op+": grad "+p.Name, vr*vc, gr*gc, 1)
		}
	}
	return nil
}
