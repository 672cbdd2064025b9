package port

import (
	"context"

	"github.com/plantline/opsconsole/internal/domain/event"
)

// EventPublisher emits domain events onto the audit stream. Publishing is
// fire-and-forget: failures never affect the operation that raised the event.
type EventPublisher interface {
	Publish(ctx context.Context, evt *event.Event)
}
