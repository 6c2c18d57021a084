package models

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// setWeights は手計算しやすい値にMLPの全パラメータを上書きする
func setWeights(m *MLP, w1, b1, w2, b2 []float64) {
	params := m.Parameters() // hidden weight, hidden bias, output weight, output bias
	params[0].Value.SetRow(0, w1[:2])
	params[0].Value.SetRow(1, w1[2:])
	params[1].Value.SetRow(0, b1)
	params[2].Value.Set(0, 0, w2[0])
	params[2].Value.Set(1, 0, w2[1])
	params[3].Value.Set(0, 0, b2[0])
}

func TestMLP_Forward(t *testing.T) {
	m, err := NewMLP(2, 2, 1, 7)
	if err != nil {
		t.Fatal(err)
	}
	// 隠れ層: 単位行列、出力層: 和をとる
	setWeights(m,
		[]float64{1, 0, 0, 1}, []float64{0, 0},
		[]float64{1, 1}, []float64{0},
	)

	// pre = [1, -2] → ReLU → [1, 0] → y = 1
	X := mat.NewDense(1, 2, []float64{1, -2})
	out, err := m.Forward(X)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.At(0, 0); math.Abs(got-1) > 1e-12 {
		t.Errorf("Forward = %v, want 1", got)
	}
}

func TestMLP_Backward_ReLUMask(t *testing.T) {
	m, err := NewMLP(2, 2, 1, 7)
	if err != nil {
		t.Fatal(err)
	}
	setWeights(m,
		[]float64{1, 0, 0, 1}, []float64{0, 0},
		[]float64{1, 1}, []float64{0},
	)
	m.ZeroGrad()

	// pre = [1, -2]: 2番目のユニットは非活性なので勾配が通らない
	X := mat.NewDense(1, 2, []float64{1, -2})
	if _, err := m.Forward(X); err != nil {
		t.Fatal(err)
	}
	if err := m.Backward(mat.NewDense(1, 1, []float64{1})); err != nil {
		t.Fatal(err)
	}

	params := m.Parameters()

	// 出力層: dW2 = actᵀ·g = [1, 0]ᵀ
	if got := params[2].Grad.At(0, 0); got != 1 {
		t.Errorf("dW2[0] = %v, want 1", got)
	}
	if got := params[2].Grad.At(1, 0); got != 0 {
		t.Errorf("dW2[1] = %v, want 0", got)
	}

	// 隠れ層: gradAct = [1, 1] がマスクされ [1, 0] に
	// dW1 = Xᵀ·[1, 0]
	if got := params[0].Grad.At(0, 0); got != 1 {
		t.Errorf("dW1[0,0] = %v, want 1", got)
	}
	if got := params[0].Grad.At(0, 1); got != 0 {
		t.Errorf("dW1[0,1] = %v, want 0", got)
	}
	if got := params[0].Grad.At(1, 0); got != -2 {
		t.Errorf("dW1[1,0] = %v, want -2", got)
	}
	if got := params[1].Grad.At(0, 1); got != 0 {
		t.Errorf("db1[1] = %v, want 0 (masked unit)", got)
	}
}

func TestMLP_NumericalGradient(t *testing.T) {
	m, err := NewMLP(2, 3, 1, 11)
	if err != nil {
		t.Fatal(err)
	}

	// 活性化前の値が0から十分離れるように固定（ReLUの折れ点を避ける）
	params := m.Parameters()
	params[0].Value.SetRow(0, []float64{0.4, -0.6, 0.9})
	params[0].Value.SetRow(1, []float64{0.3, 0.7, -0.2})
	params[1].Value.SetRow(0, []float64{0.1, -0.2, 0.3})
	params[2].Value.Set(0, 0, 0.5)
	params[2].Value.Set(1, 0, -0.4)
	params[2].Value.Set(2, 0, 0.8)
	params[3].Value.Set(0, 0, 0.05)

	X := mat.NewDense(2, 2, []float64{0.5, -0.3, 1.2, 0.8})

	// 損失 L = Σ y を使うと gradOut は全て1になる
	loss := func() float64 {
		out, err := m.Forward(X)
		if err != nil {
			t.Fatal(err)
		}
		var sum float64
		r, c := out.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				sum += out.At(i, j)
			}
		}
		return sum
	}

	m.ZeroGrad()
	if _, err := m.Forward(X); err != nil {
		t.Fatal(err)
	}
	if err := m.Backward(mat.NewDense(2, 1, []float64{1, 1})); err != nil {
		t.Fatal(err)
	}

	const eps = 1e-6
	for _, p := range m.Parameters() {
		r, c := p.Value.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				orig := p.Value.At(i, j)

				p.Value.Set(i, j, orig+eps)
				plus := loss()
				p.Value.Set(i, j, orig-eps)
				minus := loss()
				p.Value.Set(i, j, orig)

				numeric := (plus - minus) / (2 * eps)
				analytic := p.Grad.At(i, j)
				if math.Abs(numeric-analytic) > 1e-4 {
					t.Errorf("%s[%d,%d]: analytic grad %v, numeric %v", p.Name, i, j, analytic, numeric)
				}
			}
		}
	}
}
