// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

// Levels in addition to the slog ones.
const (
	LevelTrace slog.Level = -8
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
	LevelCrit  slog.Level = 12

	levelMaxVerbosity = LevelTrace
)

// Legacy numeric verbosity levels, as accepted by the --verbosity flag.
const (
	LegacyLevelCrit = iota
	LegacyLevelError
	LegacyLevelWarn
	LegacyLevelInfo
	LegacyLevelDebug
	LegacyLevelTrace
)

// FromLegacyLevel converts a numeric verbosity into a slog level.
func FromLegacyLevel(lvl int) slog.Level {
	switch lvl {
	case LegacyLevelCrit:
		return LevelCrit
	case LegacyLevelError:
		return LevelError
	case LegacyLevelWarn:
		return LevelWarn
	case LegacyLevelInfo:
		return LevelInfo
	case LegacyLevelDebug:
		return LevelDebug
	case LegacyLevelTrace:
		return LevelTrace
	}
	if lvl > LegacyLevelTrace {
		return LevelTrace
	}
	return LevelCrit
}

// LevelAlignedString returns a 5-character string containing the name of a level.
func LevelAlignedString(l slog.Level) string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO "
	case LevelWarn:
		return "WARN "
	case LevelError:
		return "ERROR"
	case LevelCrit:
		return "CRIT "
	default:
		return "unknown level"
	}
}

// LevelString returns a string containing the name of a level.
func LevelString(l slog.Level) string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelCrit:
		return "crit"
	default:
		return "unknown"
	}
}

// Logger writes key/value pairs to a handler.
type Logger interface {
	// With returns a new Logger that has this logger's attributes plus the given attributes
	With(ctx ...any) Logger

	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	// Crit logs a message at the crit level and exits the process.
	Crit(msg string, ctx ...any)

	// Enabled reports whether l emits log records at the given context and level.
	Enabled(ctx context.Context, level slog.Level) bool
	// Handler returns the underlying handler of the inner logger.
	Handler() slog.Handler
}

type logger struct {
	inner *slog.Logger
}

// NewLogger returns a logger with the specified handler set.
func NewLogger(h slog.Handler) Logger {
	return &logger{slog.New(h)}
}

func (l *logger) Handler() slog.Handler {
	return l.inner.Handler()
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{l.inner.With(ctx...)}
}

func (l *logger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.inner.Enabled(ctx, level)
}

func (l *logger) Trace(msg string, ctx ...any) { l.inner.Log(context.Background(), LevelTrace, msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...any) { l.inner.Log(context.Background(), LevelDebug, msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.inner.Log(context.Background(), LevelInfo, msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.inner.Log(context.Background(), LevelWarn, msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.inner.Log(context.Background(), LevelError, msg, ctx...) }

func (l *logger) Crit(msg string, ctx ...any) {
	l.inner.Log(context.Background(), LevelCrit, msg, ctx...)
	os.Exit(1)
}

var root atomic.Pointer[logger]

func init() {
	root.Store(&logger{slog.New(DiscardHandler())})
}

// SetDefault sets the default global logger.
func SetDefault(l Logger) {
	if lg, ok := l.(*logger); ok {
		root.Store(lg)
		slog.SetDefault(lg.inner)
		return
	}
	root.Store(&logger{slog.New(l.Handler())})
}

// Root returns the root logger.
func Root() Logger {
	return root.Load()
}

// WithContext returns a logger carrying ctx which resolves the root logger at every call,
// so package level loggers follow a later SetDefault.
func WithContext(ctx ...any) Logger {
	return &contextLogger{ctx: ctx}
}

type contextLogger struct {
	ctx []any
}

func (c *contextLogger) resolve() *slog.Logger {
	return root.Load().inner.With(c.ctx...)
}

func (c *contextLogger) With(ctx ...any) Logger {
	return &contextLogger{ctx: append(append([]any(nil), c.ctx...), ctx...)}
}

func (c *contextLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return root.Load().inner.Enabled(ctx, level)
}

func (c *contextLogger) Handler() slog.Handler { return c.resolve().Handler() }

func (c *contextLogger) log(level slog.Level, msg string, ctx []any) {
	inner := root.Load().inner
	if !inner.Enabled(context.Background(), level) {
		return
	}
	inner.With(c.ctx...).Log(context.Background(), level, msg, ctx...)
}

func (c *contextLogger) Trace(msg string, ctx ...any) { c.log(LevelTrace, msg, ctx) }
func (c *contextLogger) Debug(msg string, ctx ...any) { c.log(LevelDebug, msg, ctx) }
func (c *contextLogger) Info(msg string, ctx ...any)  { c.log(LevelInfo, msg, ctx) }
func (c *contextLogger) Warn(msg string, ctx ...any)  { c.log(LevelWarn, msg, ctx) }
func (c *contextLogger) Error(msg string, ctx ...any) { c.log(LevelError, msg, ctx) }

func (c *contextLogger) Crit(msg string, ctx ...any) {
	c.log(LevelCrit, msg, ctx)
	os.Exit(1)
}

// Package level helpers writing to the root logger.

func Trace(msg string, ctx ...any) { Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { Root().Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { Root().Crit(msg, ctx...) }
