package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gofit/core/model"
	"github.com/YuminosukeSato/gofit/pkg/errors"
)

func TestStandardScaler_FitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatal(err)
	}

	// 各列の平均が0、標準偏差が1になること
	r, c := scaled.Dims()
	for j := 0; j < c; j++ {
		var sum, sumSq float64
		for i := 0; i < r; i++ {
			v := scaled.At(i, j)
			sum += v
			sumSq += v * v
		}
		mean := sum / float64(r)
		std := math.Sqrt(sumSq/float64(r) - mean*mean)
		if math.Abs(mean) > 1e-10 {
			t.Errorf("column %d mean = %v, want 0", j, mean)
		}
		if math.Abs(std-1) > 1e-10 {
			t.Errorf("column %d std = %v, want 1", j, std)
		}
	}
}

func TestStandardScaler_InverseTransform(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1, -5,
		2, 0,
		3, 5,
	})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatal(err)
	}
	restored, err := scaler.InverseTransform(scaled)
	if err != nil {
		t.Fatal(err)
	}

	if !mat.EqualApprox(X, restored, 1e-10) {
		t.Error("InverseTransform(Transform(X)) should restore X")
	}
}

func TestStandardScaler_NotFitted(t *testing.T) {
	scaler := NewStandardScalerDefault()
	_, err := scaler.Transform(mat.NewDense(1, 1, nil))
	if err == nil {
		t.Fatal("Transform before Fit should fail")
	}
	var nfe *errors.NotFittedError
	if !errors.As(err, &nfe) {
		t.Fatalf("error should be a *NotFittedError, got %T", err)
	}
}

func TestStandardScaler_ConstantColumn(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{7, 7, 7})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatal(err)
	}
	// 定数列はゼロ除算にならず0に写される
	for i := 0; i < 3; i++ {
		if got := scaled.At(i, 0); got != 0 {
			t.Errorf("scaled[%d] = %v, want 0", i, got)
		}
	}
}

func TestMinMaxScaler_Transform(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		0, 100,
		5, 200,
		10, 300,
	})

	scaler := NewMinMaxScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatal(err)
	}

	want := mat.NewDense(3, 2, []float64{
		0, 0,
		0.5, 0.5,
		1, 1,
	})
	if !mat.EqualApprox(scaled, want, 1e-12) {
		t.Errorf("scaled = %v, want %v", mat.Formatted(scaled), mat.Formatted(want))
	}
}

func TestMinMaxScaler_CustomRange(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{0, 10})

	scaler := NewMinMaxScaler([2]float64{-1, 1})
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatal(err)
	}
	if got := scaled.At(0, 0); got != -1 {
		t.Errorf("scaled min = %v, want -1", got)
	}
	if got := scaled.At(1, 0); got != 1 {
		t.Errorf("scaled max = %v, want 1", got)
	}
}

func TestMinMaxScaler_InvalidRange(t *testing.T) {
	scaler := NewMinMaxScaler([2]float64{1, 1})
	if err := scaler.Fit(mat.NewDense(2, 1, []float64{0, 1})); err == nil {
		t.Error("equal range bounds should fail validation")
	}
}

func TestBatchTransform(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	scaler := NewStandardScalerDefault()
	if err := scaler.Fit(X); err != nil {
		t.Fatal(err)
	}

	hook := BatchTransform(scaler)

	y := mat.NewDense(4, 1, []float64{10, 20, 30, 40})
	out, err := hook(model.Batch{X: X, Y: y})
	if err != nil {
		t.Fatal(err)
	}

	// Xは標準化され、Yはそのまま通る
	want, err := scaler.Transform(X)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.EqualApprox(out.X, want, 1e-12) {
		t.Error("hook should transform X with the fitted scaler")
	}
	if !mat.Equal(out.Y, y) {
		t.Error("hook should pass Y through unchanged")
	}
}

func TestBatchTransform_NotFitted(t *testing.T) {
	hook := BatchTransform(NewStandardScalerDefault())
	_, err := hook(model.Batch{X: mat.NewDense(1, 1, nil), Y: mat.NewDense(1, 1, nil)})
	if err == nil {
		t.Error("hook with an unfitted transformer should fail")
	}
}
