// Package logger provides a simple, thread-safe logging facility.
//
// Each entry carries a timestamp, a level, an optional scope and the
// message. The scope is usually a run ID or a system label such as
// "system-3"; pass "" to omit it.
//
// # Basic Usage
//
//	logger.Info("", "Simulation started")
//	logger.Debug("system-3", "terminal score %d", score)
//
//	l := logger.New(os.Stderr, logger.LevelDebug)
//	l.Warn(runID, "probability %v outside [0,1]", p)
//
// # Log Levels
//
// Levels are Debug, Info, Warn and Error. ParseLevel accepts the lowercase
// names used in configuration files and environment variables.
//
// The default logger writes to stderr so that exported data on stdout stays
// machine-readable.
package logger
