package train

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gofit/pkg/errors"
)

// Criterion computes the scalar loss and its gradient with respect to the
// model output. Gradient computation for the model parameters themselves is
// the model's job (Module.Backward); the criterion only seeds it.
type Criterion interface {
	// Loss returns the scalar loss for a batch of predictions.
	Loss(pred, target mat.Matrix) (float64, error)

	// Grad returns dLoss/dPred with the same shape as pred.
	Grad(pred, target mat.Matrix) (mat.Matrix, error)
}

// MSELoss は平均二乗誤差損失
// Loss = (1/N) * Σ(pred - target)²  （Nは全要素数）
type MSELoss struct{}

// NewMSELoss creates a mean squared error criterion.
func NewMSELoss() *MSELoss {
	return &MSELoss{}
}

func checkSameShape(op string, pred, target mat.Matrix) (rows, cols int, err error) {
	pr, pc := pred.Dims()
	tr, tc := target.Dims()
	if pr == 0 || pc == 0 {
		return 0, 0, errors.NewModelError(op, "empty prediction", errors.ErrEmptyData)
	}
	if pr != tr {
		return 0, 0, errors.NewDimensionError(op, pr, tr, 0)
	}
	if pc != tc {
		return 0, 0, errors.NewDimensionError(op, pc, tc, 1)
	}
	return pr, pc, nil
}

// Loss implements Criterion.Loss.
func (l *MSELoss) Loss(pred, target mat.Matrix) (float64, error) {
	r, c, err := checkSameShape("MSELoss.Loss", pred, target)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			diff := pred.At(i, j) - target.At(i, j)
			sum += diff * diff
		}
	}
	return sum / float64(r*c), nil
}

// Grad implements Criterion.Grad: dL/dpred = 2*(pred - target)/N.
func (l *MSELoss) Grad(pred, target mat.Matrix) (mat.Matrix, error) {
	r, c, err := checkSameShape("MSELoss.Grad", pred, target)
	if err != nil {
		return nil, err
	}

	grad := mat.NewDense(r, c, nil)
	scale := 2.0 / float64(r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			grad.Set(i, j, scale*(pred.At(i, j)-target.At(i, j)))
		}
	}
	return grad, nil
}

// CrossEntropyLoss はソフトマックス交差エントロピー損失
// predはロジット行列 (n_samples × n_classes)、targetはクラスインデックスの
// 列ベクトル (n_samples × 1) を想定する
type CrossEntropyLoss struct{}

// NewCrossEntropyLoss creates a softmax cross-entropy criterion.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return &CrossEntropyLoss{}
}

func checkLogitsTarget(op string, pred, target mat.Matrix) (rows, classes int, err error) {
	pr, pc := pred.Dims()
	tr, tc := target.Dims()
	if pr == 0 || pc == 0 {
		return 0, 0, errors.NewModelError(op, "empty prediction", errors.ErrEmptyData)
	}
	if pr != tr {
		return 0, 0, errors.NewDimensionError(op, pr, tr, 0)
	}
	if tc != 1 {
		return 0, 0, errors.NewValueError(op, "target must be a column vector of class indices")
	}
	return pr, pc, nil
}

// Loss implements Criterion.Loss using the log-sum-exp trick.
func (l *CrossEntropyLoss) Loss(pred, target mat.Matrix) (float64, error) {
	r, c, err := checkLogitsTarget("CrossEntropyLoss.Loss", pred, target)
	if err != nil {
		return 0, err
	}

	logits := make([]float64, c)
	var sum float64
	for i := 0; i < r; i++ {
		cls := int(target.At(i, 0))
		if cls < 0 || cls >= c {
			return 0, errors.NewValueError("CrossEntropyLoss.Loss", "class index out of range")
		}
		for j := 0; j < c; j++ {
			logits[j] = pred.At(i, j)
		}
		sum += errors.LogSumExp(logits) - logits[cls]
	}
	return sum / float64(r), nil
}

// Grad implements Criterion.Grad: dL/dlogits = (softmax - onehot)/n.
func (l *CrossEntropyLoss) Grad(pred, target mat.Matrix) (mat.Matrix, error) {
	r, c, err := checkLogitsTarget("CrossEntropyLoss.Grad", pred, target)
	if err != nil {
		return nil, err
	}

	grad := mat.NewDense(r, c, nil)
	logits := make([]float64, c)
	for i := 0; i < r; i++ {
		cls := int(target.At(i, 0))
		if cls < 0 || cls >= c {
			return nil, errors.NewValueError("CrossEntropyLoss.Grad", "class index out of range")
		}
		for j := 0; j < c; j++ {
			logits[j] = pred.At(i, j)
		}
		lse := errors.LogSumExp(logits)
		for j := 0; j < c; j++ {
			p := math.Exp(logits[j] - lse)
			if j == cls {
				p -= 1.0
			}
			grad.Set(i, j, p/float64(r))
		}
	}
	return grad, nil
}

var (
	_ Criterion = (*MSELoss)(nil)
	_ Criterion = (*CrossEntropyLoss)(nil)
)
