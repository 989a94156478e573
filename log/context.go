package log

import (
	"context"
)

type (
	ctxLevelKey struct{}
	ctxNamesKey struct{}
)

// WithLevel attaches the level of the prospective log event to ctx.
func WithLevel(ctx context.Context, lvl Level) context.Context {
	return context.WithValue(ctx, ctxLevelKey{}, lvl)
}

// LevelFromContext extracts the event level, INFO if absent.
func LevelFromContext(ctx context.Context) Level {
	if lvl, has := ctx.Value(ctxLevelKey{}).(Level); has {
		return lvl
	}

	return INFO
}

// WithNames appends scope names to ctx.
func WithNames(ctx context.Context, names ...string) context.Context {
	return context.WithValue(ctx, ctxNamesKey{}, append(NamesFromContext(ctx), names...))
}

// NamesFromContext extracts accumulated scope names.
func NamesFromContext(ctx context.Context) []string {
	if names, has := ctx.Value(ctxNamesKey{}).([]string); has {
		return names[:len(names):len(names)]
	}

	return nil
}
