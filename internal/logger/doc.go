// Package logger wraps zap to offer:
//   - a global sugared logger with console or JSON encoding,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing utilities and a robfig/cron adapter,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// Every service receives a context and extracts the logger from it, so the
// scheduler, the control server and the CLI share scoped, structured logs.
package logger
