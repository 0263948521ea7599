// Package log provides a simple, leveled logging interface for the dataflow
// engine.
//
// The engine logs evaluation and taint propagation at debug level through a
// small Logger interface, so any logging backend can be plugged in. A
// DefaultLogger on Go's standard log package and an adapter for
// github.com/kataras/golog are provided.
//
// # Log Levels
//
// Five levels, in order of increasing severity:
//
//   - LogLevelDebug: detailed engine activity (per-node evaluation, taint)
//   - LogLevelInfo: general informational messages
//   - LogLevelWarn: potentially problematic situations
//   - LogLevelError: failures that need attention
//   - LogLevelNone: disables all logging output
//
// # Example Usage
//
//	// Create a logger with DEBUG level to watch the engine work
//	logger := log.NewDefaultLogger(log.LogLevelDebug)
//
//	g := graph.New("pipeline")
//	g.SetLogger(logger)
//
// ## golog Integration
//
//	glogger := golog.New()
//	glogger.SetPrefix("[pipeline] ")
//	g.SetLogger(log.NewGologLogger(glogger))
//
// # Thread Safety
//
// DefaultLogger is safe for concurrent use; Go's standard log.Logger handles
// synchronization internally. Custom implementations must be safe for
// concurrent use when evaluation runs in parallel mode.
package log
