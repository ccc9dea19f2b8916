// Package logger builds configured *slog.Logger instances through functional
// options: output format, level, static attributes, and extractors that pull
// request-scoped values (tenant id, request id) out of context on every
// record. Attribute constructors in attr.go keep key naming consistent
// across services.
package logger
