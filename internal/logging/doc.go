// Package logging constructs the slog loggers used across cohort.
//
// It supports a human-oriented console format and a machine-oriented JSON
// format, multi-destination output (stdout plus a log file under the
// configured log directory), and a TRACE level below slog's DEBUG for
// per-rule match evaluation output. Loggers are always injected; no package
// keeps a process-global logger.
package logging
