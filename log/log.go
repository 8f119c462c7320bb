// Package log wraps logrus with the key/value calling convention used
// throughout this codebase: Info/Warn/Debug/Error take an optional
// leading context.Context, a message, and trailing alternating
// key/value pairs. Error additionally accepts an error as its next
// argument, before the key/value pairs.
package log

import (
	"context"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var root = logrus.New()

type requestIDKey struct{}

func init() {
	root.SetOutput(os.Stderr)
	root.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	SetLevelString(os.Getenv("UDLNA_LOG_LEVEL"))
}

// SetLevelString parses a standard log-level name (trace, debug, info,
// warn, error) and applies it, defaulting to info on empty or invalid
// input.
func SetLevelString(level string) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	root.SetLevel(lvl)
}

// WithRequestID attaches a request identifier that future log calls on
// the returned context will surface as a "requestID" field.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Info logs at info level. First argument may be a context.Context.
func Info(msgOrCtx interface{}, args ...interface{}) { emit(logrus.InfoLevel, msgOrCtx, args) }

// Warn logs at warn level. First argument may be a context.Context.
func Warn(msgOrCtx interface{}, args ...interface{}) { emit(logrus.WarnLevel, msgOrCtx, args) }

// Debug logs at debug level. First argument may be a context.Context.
func Debug(msgOrCtx interface{}, args ...interface{}) { emit(logrus.DebugLevel, msgOrCtx, args) }

// Error logs at error level. If the first remaining argument (after an
// optional leading context.Context and the message) is an error, it is
// attached as the "error" field.
func Error(msgOrCtx interface{}, args ...interface{}) { emit(logrus.ErrorLevel, msgOrCtx, args) }

// Fatal logs at fatal level then exits the process with status 1.
// Reserved for unrecoverable programmer errors; startup failures that
// must print the spec's single "error: ..." line use os.Exit directly
// instead, to avoid the logrus timestamp/level prefix.
func Fatal(msgOrCtx interface{}, args ...interface{}) {
	emit(logrus.FatalLevel, msgOrCtx, args)
	os.Exit(1)
}

func emit(level logrus.Level, msgOrCtx interface{}, args []interface{}) {
	var ctx context.Context
	var msg string
	switch v := msgOrCtx.(type) {
	case context.Context:
		ctx = v
		if len(args) > 0 {
			msg, _ = args[0].(string)
			args = args[1:]
		}
	case string:
		msg = v
	default:
		return
	}

	fields := logrus.Fields{}
	if level == logrus.ErrorLevel && len(args) > 0 {
		if err, ok := args[0].(error); ok {
			fields["error"] = err
			args = args[1:]
		}
	}
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			fields[key] = args[i+1]
		}
	}
	if ctx != nil {
		if id, ok := ctx.Value(requestIDKey{}).(string); ok {
			fields["requestID"] = id
		}
	}
	root.WithFields(fields).Log(level, msg)
}
