package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"
)

/*
Package log wraps slog with context-scoped tags. Tags attached with AddTags
travel with the context and are appended to every record logged under it,
so store keys and element names set once at a call boundary show up on every
line beneath it.
*/

////////////////////////////////////////////////////////////////////////////////

type contextKey int

const logTagKey contextKey = iota

// AddTags returns a context carrying additional key/value log tags.
func AddTags(ctx context.Context, kvs ...any) context.Context {
	if len(kvs)%2 != 0 {
		panic("log: AddTags requires an even number of arguments")
	}
	tags, _ := ctx.Value(logTagKey).([]any)
	return context.WithValue(ctx, logTagKey, append(tags, kvs...))
}

// Configure installs a text handler on stderr at the given level.
func Configure(level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func fromContext(ctx context.Context) []any {
	tags, _ := ctx.Value(logTagKey).([]any)
	return tags
}

func emit(ctx context.Context, level slog.Level, msg string, keyvals ...any) {
	handler := slog.Default().Handler()
	if !handler.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	for i := 0; i+1 < len(keyvals); i += 2 {
		r.Add(keyvals[i].(string), keyvals[i+1])
	}
	tags := fromContext(ctx)
	for i := 0; i+1 < len(tags); i += 2 {
		r.Add(tags[i].(string), tags[i+1])
	}
	if err := handler.Handle(ctx, r); err != nil {
		slog.ErrorContext(ctx, "error handling log record", "error", err)
	}
}

func Debugf(ctx context.Context, format string, args ...any) {
	emit(ctx, slog.LevelDebug, fmt.Sprintf(format, args...))
}

func Infof(ctx context.Context, format string, args ...any) {
	emit(ctx, slog.LevelInfo, fmt.Sprintf(format, args...))
}

func Warnf(ctx context.Context, format string, args ...any) {
	emit(ctx, slog.LevelWarn, fmt.Sprintf(format, args...))
}

func Errorf(ctx context.Context, format string, args ...any) {
	emit(ctx, slog.LevelError, fmt.Sprintf(format, args...))
}

func Debugw(ctx context.Context, msg string, keyvals ...any) {
	emit(ctx, slog.LevelDebug, msg, keyvals...)
}

func Infow(ctx context.Context, msg string, keyvals ...any) {
	emit(ctx, slog.LevelInfo, msg, keyvals...)
}

func Errorw(ctx context.Context, msg string, keyvals ...any) {
	emit(ctx, slog.LevelError, msg, keyvals...)
}
