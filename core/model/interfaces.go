// Package model provides the shared interfaces and types consumed by the
// training loop: the Module contract, parameters, batches, and fitted-state
// tracking.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Transformer はデータ変換のインターフェース
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error

	// Transform はデータを変換する
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// Persistable is the interface for models that can be saved and loaded.
// gofit does not prescribe a serialization format; the checkpoint hook
// simply calls Save on models that implement this.
type Persistable interface {
	// Save saves the model to a file.
	Save(path string) error

	// Load loads the model from a file.
	Load(path string) error
}
