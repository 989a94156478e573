package log

import (
	"context"
	"io"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/ledgerdb/ledger-go-sdk/internal/xstring"
)

const dateLayout = "2006-01-02 15:04:05.000"

// Logger is the interface consumed by all log adapters of the driver.
type Logger interface {
	// Log logs the message with specified level, scope names and fields
	// taken from ctx. Implementations must not in any way use slice of
	// fields after Log returns.
	Log(ctx context.Context, msg string, fields ...Field)
}

var _ Logger = (*defaultLogger)(nil)

type simpleLoggerOption func(l *defaultLogger)

// WithMinLevel sets the minimal level of logged events.
func WithMinLevel(lvl Level) simpleLoggerOption {
	return func(l *defaultLogger) {
		l.minLevel = lvl
	}
}

// WithClock replaces the wall clock used for event timestamps.
func WithClock(clock clockwork.Clock) simpleLoggerOption {
	return func(l *defaultLogger) {
		l.clock = clock
	}
}

// Default returns a plain text logger writing to w.
func Default(w io.Writer, opts ...simpleLoggerOption) *defaultLogger {
	l := &defaultLogger{
		minLevel: INFO,
		clock:    clockwork.NewRealClock(),
		w:        w,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	return l
}

type defaultLogger struct {
	minLevel Level
	clock    clockwork.Clock
	w        io.Writer
}

func (l *defaultLogger) Log(ctx context.Context, msg string, fields ...Field) {
	lvl := LevelFromContext(ctx)
	if lvl < l.minLevel {
		return
	}
	b := xstring.Buffer()
	defer b.Free()
	b.WriteString(l.clock.Now().Format(dateLayout))
	b.WriteByte(' ')
	b.WriteString(lvl.String())
	if names := NamesFromContext(ctx); len(names) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(names, "."))
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	b.WriteString(msg)
	if len(fields) > 0 {
		b.WriteString(" {")
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(f.Key())
			b.WriteString(`":"`)
			b.WriteString(f.String())
			b.WriteByte('"')
		}
		b.WriteByte('}')
	}
	b.WriteByte('\n')
	_, _ = l.w.Write(b.Bytes())
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Log(context.Context, string, ...Field) {}
