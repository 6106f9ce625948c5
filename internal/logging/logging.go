// Package logging provides the process-wide structured logger. Every
// mutating registry/index operation emits one line through this logger
// rather than bare fmt/log calls, so operators get consistent fields
// (index name, operation, duration) to grep or pipe into a log processor.
package logging

import (
	"log/slog"
	"os"
)

// New builds the service's logger: JSON output on stdout, suitable for
// both local development (readable with `jq`) and container log
// collection.
func New() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler)
}
