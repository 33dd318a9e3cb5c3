package memory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/baechuer/docvault/internal/application/auth"
)

// NoopPublisher logs user events instead of sending them. Used when RabbitMQ
// is not configured.
type NoopPublisher struct {
	log zerolog.Logger
}

func NewNoopPublisher(log zerolog.Logger) *NoopPublisher {
	return &NoopPublisher{log: log}
}

func (p *NoopPublisher) PublishUserEvent(ctx context.Context, evt auth.UserEvent) error {
	p.log.Debug().
		Str("event", evt.Type).
		Str("user_id", evt.UserID).
		Strs("roles", evt.Roles).
		Msg("noop publish")
	return nil
}
