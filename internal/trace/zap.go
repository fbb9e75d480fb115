package trace

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapTracer forwards events to a zap.Logger: command events at info level,
// everything finer at debug level.
type ZapTracer struct {
	log   *zap.Logger
	level Level
}

// NewZapTracer wraps log; a nil logger is replaced by zap.NewNop.
func NewZapTracer(log *zap.Logger, level Level) *ZapTracer {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapTracer{log: log.Named("trace"), level: level}
}

// NewZapLogger builds the production JSON logger, at debug level when the
// trace level asks for guard events.
func NewZapLogger(level Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level >= LevelDebug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func (t *ZapTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	ev.Seq = NextSeq()
	lvl := zapcore.DebugLevel
	if ev.Scope <= ScopeCommand {
		lvl = zapcore.InfoLevel
	}
	ce := t.log.Check(lvl, ev.Name)
	if ce == nil {
		return
	}
	fields := make([]zap.Field, 0, 7+len(ev.Extra))
	fields = append(fields,
		zap.String("kind", ev.Kind.String()),
		zap.String("scope", ev.Scope.String()),
		zap.Uint64("seq", ev.Seq),
		zap.Uint64("span", ev.SpanID),
		zap.Uint64("parent", ev.ParentID),
	)
	if ev.Detail != "" {
		fields = append(fields, zap.String("detail", ev.Detail))
	}
	for k, v := range ev.Extra {
		fields = append(fields, zap.String(k, v))
	}
	ce.Write(fields...)
}

// Flush syncs the logger. Syncing a terminal fails on some systems; that
// error is not interesting.
func (t *ZapTracer) Flush() error {
	_ = t.log.Sync() //nolint:errcheck
	return nil
}

func (t *ZapTracer) Close() error  { return t.Flush() }
func (t *ZapTracer) Level() Level  { return t.level }
func (t *ZapTracer) Enabled() bool { return t.level > LevelOff }
