package ledger

import (
	"io"
	"log/slog"
)

// CallEvent records metadata about a single ledger request.
type CallEvent struct {
	Method    string
	Path      string
	Status    int
	Attempt   int
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about ledger calls for logging.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events to an io.Writer as slog text records.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	attrs := []any{
		"method", event.Method,
		"path", event.Path,
		"status", event.Status,
		"attempt", event.Attempt,
		"latency_ms", event.LatencyMs,
	}
	if !event.Success {
		o.logger.Warn("ledger_call", append(attrs, "error_code", event.ErrorCode)...)
		return
	}
	o.logger.Info("ledger_call", attrs...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
