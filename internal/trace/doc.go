// Package trace records what the folder and the CLI do: one span per command,
// one per folded constant, and point events for guard scopes and host steps.
//
// # Tracers
//
//   - Nop: zero-overhead tracer when tracing is disabled
//   - StreamTracer: immediate write to a file or stderr (text or NDJSON)
//   - RingTracer: last N events in memory, dumped on failure
//   - ZapTracer: forwards events to a zap.Logger
//   - MultiTracer: fan-out to several tracers
//
// # Levels and scopes
//
// LevelCommand keeps command spans only, LevelFold adds one span per folded
// constant, LevelDebug adds guard and step events.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeFold, "fold")
//	defer span.End("")
package trace
