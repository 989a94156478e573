package log

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Logger = (*zapAdapter)(nil)

// Zap adapts a zap logger to the driver's Logger interface. Scope names
// become the zap logger name, driver fields map to typed zap fields.
func Zap(l *zap.Logger) Logger {
	return &zapAdapter{l: l.WithOptions(zap.AddCallerSkip(1))}
}

type zapAdapter struct {
	l *zap.Logger
}

func (a *zapAdapter) Log(ctx context.Context, msg string, fields ...Field) {
	lvl := LevelFromContext(ctx)
	if lvl >= QUIET {
		return
	}
	logger := a.l
	if names := NamesFromContext(ctx); len(names) > 0 {
		logger = logger.Named(strings.Join(names, "."))
	}
	if ce := logger.Check(zapLevel(lvl), msg); ce != nil {
		ce.Write(zapFields(fields)...)
	}
}

func zapLevel(lvl Level) zapcore.Level {
	switch lvl {
	case TRACE, DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	case FATAL:
		return zapcore.FatalLevel
	default:
		return zapcore.InvalidLevel
	}
}

func zapFields(fields []Field) []zap.Field {
	ff := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch f.Type() {
		case IntType:
			ff = append(ff, zap.Int(f.Key(), f.IntValue()))
		case Int64Type:
			ff = append(ff, zap.Int64(f.Key(), f.Int64Value()))
		case StringType:
			ff = append(ff, zap.String(f.Key(), f.StringValue()))
		case BoolType:
			ff = append(ff, zap.Bool(f.Key(), f.BoolValue()))
		case DurationType:
			ff = append(ff, zap.Duration(f.Key(), f.DurationValue()))
		case StringsType:
			ff = append(ff, zap.Strings(f.Key(), f.StringsValue()))
		case ErrorType:
			ff = append(ff, zap.NamedError(f.Key(), f.ErrorValue()))
		default:
			ff = append(ff, zap.Any(f.Key(), f.AnyValue()))
		}
	}

	return ff
}
