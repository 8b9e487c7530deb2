// Package analytics provides fire-and-forget event sinks. Callers never
// branch on the outcome of Record.
package analytics

import (
	"context"

	"github.com/wolfman30/orbit-landing/pkg/logging"
)

// Properties are the free-form attributes of an event.
type Properties map[string]any

// Sink receives outbound analytics events.
type Sink interface {
	Record(ctx context.Context, name string, props Properties)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Record(context.Context, string, Properties) {}

// LogSink writes events to the structured log at debug level.
type LogSink struct {
	logger *logging.Logger
}

func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(ctx context.Context, name string, props Properties) {
	args := make([]any, 0, 2+len(props)*2)
	args = append(args, "event", name)
	for k, v := range props {
		args = append(args, k, v)
	}
	s.logger.DebugContext(ctx, "analytics event", args...)
}

// OrNop returns s, or a NopSink when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return NopSink{}
	}
	return s
}
