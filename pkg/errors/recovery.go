package errors

import (
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// PanicError はrecoverしたpanicをエラーとして表現する型です。
// 学習ループはユーザー定義フックを実行するため、フック内のpanicで
// プロセス全体を落とさず、この型に変換して呼び出し元へ返します。
type PanicError struct {
	// Operation はpanicを回収した処理の名前
	Operation string

	// PanicValue はpanic()に渡された値
	PanicValue any

	// StackTrace はpanic時点のスタックトレース
	StackTrace string
}

// NewPanicError は現在のスタックトレース付きでPanicErrorを作成します。
func NewPanicError(operation string, panicValue any) *PanicError {
	return &PanicError{
		Operation:  operation,
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
	}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// String はスタックトレースを含む詳細表現を返します。
func (e *PanicError) String() string {
	return fmt.Sprintf("%s\nstack trace:\n%s", e.Error(), e.StackTrace)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *PanicError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("error_type", "panic").
		Str("operation", e.Operation).
		Interface("panic_value", e.PanicValue).
		Str("stack_trace", e.StackTrace)
}

// Recover はdeferから呼び、panicをPanicErrorに変換してerrへ格納します。
// すでにerrが設定されている場合はpanic情報でラップします。
//
// 使用例:
//
//	func (t *Trainer) runHook() (err error) {
//	    defer errors.Recover(&err, "hook")
//	    ...
//	}
func Recover(err *error, operation string) {
	r := recover()
	if r == nil {
		return
	}
	if *err != nil {
		*err = Wrapf(*err, "panic in %s: %v", operation, r)
		return
	}
	*err = NewPanicError(operation, r)
}

// SafeExecute はfnを実行し、panicをPanicErrorとして返します。
// fn自体のエラーはそのまま透過します。
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
