package logger

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

type ctxKey struct{}

var level atomic.Int32

func init() {
	level.Store(int32(LevelInfo))
}

// SetLevel sets the process-wide minimum level.
func SetLevel(l Level) {
	level.Store(int32(l))
}

// ParseLevel maps LOG_LEVEL values; unknown values yield LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// WithRequestID stores a request id that every log line for ctx will carry.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func Debug(ctx context.Context, msg string, kv ...interface{}) {
	write(ctx, LevelDebug, "DEBUG", msg, kv)
}

func Info(ctx context.Context, msg string, kv ...interface{}) {
	write(ctx, LevelInfo, "INFO", msg, kv)
}

func Warn(ctx context.Context, msg string, kv ...interface{}) {
	write(ctx, LevelWarn, "WARN", msg, kv)
}

// Error logs msg followed by err when err is non-nil.
func Error(ctx context.Context, err error, msg string, kv ...interface{}) {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	write(ctx, LevelError, "ERROR", msg, kv)
}

func write(ctx context.Context, l Level, tag, msg string, kv []interface{}) {
	if int32(l) < level.Load() {
		return
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(tag)
	b.WriteString("] ")
	b.WriteString(msg)

	if id := RequestID(ctx); id != "" {
		b.WriteString(" request_id=")
		b.WriteString(id)
	}

	for i := 0; i < len(kv); i += 2 {
		b.WriteString(" ")
		if i+1 < len(kv) {
			fmt.Fprintf(&b, "%v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, "%v=MISSING", kv[i])
		}
	}

	log.Print(b.String())
}
