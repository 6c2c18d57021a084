// Package preprocessing は学習ループのpreprocessフックから利用できる
// scikit-learn互換のスケーラーを提供する
package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gofit/core/model"
	"github.com/YuminosukeSato/gofit/core/parallel"
	"github.com/YuminosukeSato/gofit/pkg/errors"
)

// parallelThreshold 以上の行数で列統計の計算を並列化する
const parallelThreshold = 10000

// StandardScaler はデータを平均0、標準偏差1に変換するスケーラー
type StandardScaler struct {
	model.BaseEstimator

	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の標準偏差
	Scale []float64

	// WithMean は平均を引くかどうか (デフォルト: true)
	WithMean bool

	// WithStd は標準偏差で割るかどうか (デフォルト: true)
	WithStd bool
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	err := scaler.Fit(X)
//	XScaled, err := scaler.Transform(X)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit は訓練データから統計情報（平均、標準偏差）を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	// 平均を計算
	if s.WithMean {
		parallel.ParallelizeWithThreshold(c, 4, func(start, end int) {
			for j := start; j < end; j++ {
				sum := 0.0
				for i := 0; i < r; i++ {
					sum += X.At(i, j)
				}
				s.Mean[j] = sum / float64(r)
			}
		})
	}

	// 標準偏差を計算
	if s.WithStd {
		parallel.ParallelizeWithThreshold(c, 4, func(start, end int) {
			for j := start; j < end; j++ {
				sumSquares := 0.0
				for i := 0; i < r; i++ {
					diff := X.At(i, j) - s.Mean[j]
					sumSquares += diff * diff
				}
				variance := sumSquares / float64(r)
				s.Scale[j] = math.Sqrt(variance)

				// 標準偏差が0に近い場合は1に設定（ゼロ除算を避ける）
				if math.Abs(s.Scale[j]) < 1e-8 {
					s.Scale[j] = 1.0
				}
			}
		})
	} else {
		for j := 0; j < c; j++ {
			s.Scale[j] = 1.0
		}
	}

	s.SetFitted(c)
	return nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.RequireFitted("StandardScaler", "Transform"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != s.NFeatures() {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures(), c, 1)
	}

	result := mat.NewDense(r, c, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < c; j++ {
				result.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
			}
		}
	})

	return result, nil
}

// FitTransform はFitとTransformを同時に実行する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.RequireFitted("StandardScaler", "InverseTransform"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != s.NFeatures() {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures(), c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*s.Scale[j]+s.Mean[j])
		}
	}

	return result, nil
}

// MinMaxScaler はデータを指定された範囲（デフォルト: [0, 1]）に変換するスケーラー
type MinMaxScaler struct {
	model.BaseEstimator

	// DataMin は各特徴量の最小値
	DataMin []float64

	// DataMax は各特徴量の最大値
	DataMax []float64

	// FeatureRange は変換後の範囲 [min, max]
	FeatureRange [2]float64
}

// NewMinMaxScaler は新しいMinMaxScalerを作成する
func NewMinMaxScaler(featureRange [2]float64) *MinMaxScaler {
	return &MinMaxScaler{
		FeatureRange: featureRange,
	}
}

// NewMinMaxScalerDefault は[0, 1]の範囲でMinMaxScalerを作成する
func NewMinMaxScalerDefault() *MinMaxScaler {
	return NewMinMaxScaler([2]float64{0, 1})
}

// Fit は訓練データから最小値・最大値を計算する
func (s *MinMaxScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("MinMaxScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	if s.FeatureRange[0] >= s.FeatureRange[1] {
		return errors.NewValidationError("feature_range", "min must be less than max", s.FeatureRange)
	}

	s.DataMin = make([]float64, c)
	s.DataMax = make([]float64, c)

	for j := 0; j < c; j++ {
		minVal := math.Inf(1)
		maxVal := math.Inf(-1)
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
		s.DataMin[j] = minVal
		s.DataMax[j] = maxVal
	}

	s.SetFitted(c)
	return nil
}

// Transform は学習済みの最小値・最大値を使ってデータを変換する
func (s *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.RequireFitted("MinMaxScaler", "Transform"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != s.NFeatures() {
		return nil, errors.NewDimensionError("MinMaxScaler.Transform", s.NFeatures(), c, 1)
	}

	lo, hi := s.FeatureRange[0], s.FeatureRange[1]
	result := mat.NewDense(r, c, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < c; j++ {
				span := s.DataMax[j] - s.DataMin[j]
				if math.Abs(span) < 1e-12 {
					// 定数列は範囲の下限に写す
					result.Set(i, j, lo)
					continue
				}
				scaled := (X.At(i, j) - s.DataMin[j]) / span
				result.Set(i, j, lo+scaled*(hi-lo))
			}
		}
	})

	return result, nil
}

// FitTransform はFitとTransformを同時に実行する
func (s *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// インターフェースの実装を確認
var (
	_ model.Transformer = (*StandardScaler)(nil)
	_ model.Transformer = (*MinMaxScaler)(nil)
)
