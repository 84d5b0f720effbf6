// Package logger wraps zap for the CLI:
//   - a global sugared console logger writing to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - a shared atomic level driven by the --log-level flag.
//
// Services take a context and log through it, so every line carries the
// command name and the source or channel being worked on.
package logger
