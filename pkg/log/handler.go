package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// stacktraceHandler はレコード内のエラー属性を調べ、cockroachdb/errorsが
// 保持するスタックトレースをstacktrace属性として追記するslogハンドラ。
type stacktraceHandler struct {
	next slog.Handler
}

// WrapWithStacktrace wraps a slog handler so that records carrying an
// error attribute also emit the error's embedded stacktrace.
func WrapWithStacktrace(next slog.Handler) slog.Handler {
	return &stacktraceHandler{next: next}
}

func (h *stacktraceHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *stacktraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if st := stacktraceOf(r); st != "" {
		r.AddAttrs(slog.String(StacktraceAttrKey, st))
	}
	return h.next.Handle(ctx, r)
}

func (h *stacktraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stacktraceHandler{next: h.next.WithAttrs(attrs)}
}

func (h *stacktraceHandler) WithGroup(g string) slog.Handler {
	return &stacktraceHandler{next: h.next.WithGroup(g)}
}

// stacktraceOf は最初のエラー属性からスタックトレースを取り出す。
// 見つからなければ空文字列を返す。
func stacktraceOf(r slog.Record) string {
	var st string
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		if err, ok := attr.Value.Any().(error); ok {
			if details := errors.GetSafeDetails(err).SafeDetails; len(details) > 0 {
				st = details[0]
			}
		}
		return false
	})
	return st
}
