package backend

import (
	"io"
	"log/slog"
)

// CallEvent records metadata about a single API call, retries included.
type CallEvent struct {
	Method     string
	Path       string
	StatusCode int
	Attempts   int
	LatencyMs  int64
	Success    bool
	ErrorCode  string
}

// Observer receives events about API calls for logging.
type Observer interface {
	OnCallComplete(event CallEvent)
}

type logObserver struct {
	logger *slog.Logger
}

// NewLogObserver writes call events to w as slog text records.
func NewLogObserver(w io.Writer) Observer {
	if w == nil {
		return NoopObserver{}
	}
	return &logObserver{logger: slog.New(slog.NewTextHandler(w, nil))}
}

func (o *logObserver) OnCallComplete(e CallEvent) {
	attrs := []any{
		"method", e.Method,
		"path", e.Path,
		"status_code", e.StatusCode,
		"attempts", e.Attempts,
		"latency_ms", e.LatencyMs,
	}
	if !e.Success {
		o.logger.Error("backend_call", append(attrs, "error_code", e.ErrorCode)...)
		return
	}
	o.logger.Info("backend_call", attrs...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
