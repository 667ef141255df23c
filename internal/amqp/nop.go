package amqp

import (
	"context"

	"github.com/caburj/kwartrack/internal/ports/secondary"
)

// NopPublisher drops every message. Used when no broker is configured.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, secondary.InvalidationMessage) error { return nil }

var _ secondary.InvalidationPublisher = NopPublisher{}
