// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 学習ループの各ステージで発生する構造化されたエラー情報を提供します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("gofit-Warning: %v\n", w)
	}
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// これにより、ConvergenceWarningなどのカスタム警告の処理方法を制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// Warn は警告を発生させます。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	学習ループの警告型
//
// ===========================================================================

// ConvergenceWarning は学習が収束しなかった場合に発生する警告です。
type ConvergenceWarning struct {
	Component string
	Epochs    int
	Message   string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d epochs: %s", w.Component, w.Epochs, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d epochs. Consider increasing epochs or adjusting the learning rate.", w.Component, w.Epochs)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("component", w.Component).
		Int("epochs", w.Epochs).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning は新しいConvergenceWarningを作成します。
func NewConvergenceWarning(component string, epochs int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Component: component, Epochs: epochs, Message: message}
}

// EmptyDataWarning は空のデータローダーで学習パスが呼ばれた場合に発生する警告です。
type EmptyDataWarning struct {
	Phase string
	Epoch int
}

func (w *EmptyDataWarning) Error() string {
	return fmt.Sprintf("no batches available for %s phase at epoch %d. The pass is a no-op.", w.Phase, w.Epoch)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *EmptyDataWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("phase", w.Phase).
		Int("epoch", w.Epoch).
		Str("type", "EmptyDataWarning")
}

// NewEmptyDataWarning は新しいEmptyDataWarningを作成します。
func NewEmptyDataWarning(phase string, epoch int) *EmptyDataWarning {
	return &EmptyDataWarning{Phase: phase, Epoch: epoch}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Predict` や `Transform` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("gofit: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("gofit: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
// フックの登録や設定値の検証などで使用します。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("gofit: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("gofit: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError は学習・推論に関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gofit: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("gofit: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// NaN、Inf、オーバーフロー、アンダーフローなどを検出します。
type NumericalInstabilityError struct {
	Operation string    // 発生した操作（例: "backward", "loss"）
	Values    []float64 // 問題のある値
	Epoch     int       // 発生したエポック番号
	BatchID   int       // 発生したバッチ番号
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("gofit: numerical instability detected in %s at epoch %d batch %d. Values: [%s]",
		e.Operation, e.Epoch, e.BatchID, valStr)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NumericalInstabilityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Operation).
		Int("epoch", e.Epoch).
		Int("batch", e.BatchID).
		Floats64("values", e.Values).
		Str("type", "NumericalInstabilityError")
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, epoch, batchID int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Epoch:     epoch,
		BatchID:   batchID,
	}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrNotImplemented は機能が未実装の場合のエラーです。
	ErrNotImplemented = New("not implemented")

	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrNoMoreBatches はデータローダーがエポックの終端に達したことを示します。
	ErrNoMoreBatches = New("no more batches")
)
