package logging

import "log/slog"

// Structured log keys shared by the server, handlers and list stores.
const (
	FieldService    = "service"
	FieldError      = "error"
	FieldVersion    = "version"
	FieldBackend    = "backend"
	FieldOperation  = "operation"
	FieldGameID     = "game_id"
	FieldRequestID  = "request_id"
	FieldPath       = "path"
	FieldMethod     = "method"
	FieldStatusCode = "status_code"
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"
)

// WithCommon appends the service and version attributes that are set.
func WithCommon(attrs []slog.Attr, service, version string) []slog.Attr {
	if service != "" {
		attrs = append(attrs, slog.String(FieldService, service))
	}
	if version != "" {
		attrs = append(attrs, slog.String(FieldVersion, version))
	}
	return attrs
}
