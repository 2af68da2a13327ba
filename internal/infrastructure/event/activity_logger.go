package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/buildledger/backend/internal/domain/shared"
)

// ActivityLogger is a wildcard event handler that writes an audit line
// for every domain event passing through the bus.
type ActivityLogger struct {
	logger *zap.Logger
}

// NewActivityLogger creates an activity logger.
func NewActivityLogger(logger *zap.Logger) *ActivityLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityLogger{logger: logger}
}

// Handle logs the event's identity fields.
func (l *ActivityLogger) Handle(ctx context.Context, evt shared.DomainEvent) error {
	l.logger.Info("domain event",
		zap.String("event_type", evt.EventType()),
		zap.String("aggregate_type", evt.AggregateType()),
		zap.String("aggregate_id", evt.AggregateID().String()),
		zap.String("project_id", evt.ProjectID().String()),
		zap.Time("occurred_at", evt.OccurredAt()),
	)
	return nil
}

// EventTypes returns nil so the handler receives every event.
func (l *ActivityLogger) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*ActivityLogger)(nil)
