package model

import (
	"github.com/YuminosukeSato/gofit/pkg/errors"
)

// EstimatorState はモデル・変換器の学習状態を表す
type EstimatorState int

const (
	// NotFitted は未学習の状態
	NotFitted EstimatorState = iota
	// Fitted は学習済みの状態
	Fitted
)

// BaseEstimator はスケーラーなどの学習状態と入力次元を追跡する基底構造体
// Fitで SetFitted(nFeatures) を呼び、Transform系は RequireFitted で保護する
type BaseEstimator struct {
	state     EstimatorState
	nFeatures int
}

// IsFitted は学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted は学習済み状態に設定し、学習時の特徴量数を記録する
func (e *BaseEstimator) SetFitted(nFeatures int) {
	e.state = Fitted
	e.nFeatures = nFeatures
}

// NFeatures はFit時に記録された特徴量数を返す（未学習なら0）
func (e *BaseEstimator) NFeatures() int {
	return e.nFeatures
}

// Reset は初期状態に戻す
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
	e.nFeatures = 0
}

// RequireFitted は未学習の場合にNotFittedErrorを返す
func (e *BaseEstimator) RequireFitted(name, method string) error {
	if !e.IsFitted() {
		return errors.NewNotFittedError(name, method)
	}
	return nil
}
