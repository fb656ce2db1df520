package events

import (
	"context"

	"github.com/dmitrijs2005/zkauth/internal/logging"
)

// LogSink writes events to the ambient structured logger. It is the default
// destination when no external broker is configured.
type LogSink struct {
	logger logging.Logger
}

func NewLogSink(logger logging.Logger) *LogSink {
	return &LogSink{logger: logger.With("module", "auth_events")}
}

func (s *LogSink) Send(ctx context.Context, e Event) error {
	if e.Reason != "" {
		s.logger.Info(ctx, "auth event", "type", string(e.Type), "username", e.Username, "reason", e.Reason, "at", e.At)
		return nil
	}
	s.logger.Info(ctx, "auth event", "type", string(e.Type), "username", e.Username, "at", e.At)
	return nil
}
