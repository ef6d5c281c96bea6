package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/sahakari/coopcore/internal/core/domain"
)

// LogPublisher writes events to the structured log. Used when no broker is
// configured so local and test runs still show the event stream.
type LogPublisher struct {
	Logger *slog.Logger
}

var _ Publisher = (*LogPublisher)(nil)

// Publish logs the event at info level.
func (p *LogPublisher) Publish(ctx context.Context, event domain.Event) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "Domain event",
		slog.String("event_type", event.EventType()),
		slog.String("payload", string(payload)),
	)
	return nil
}
