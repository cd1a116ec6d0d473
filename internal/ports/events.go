package ports

import (
	"context"
	"time"
)

// Event is a committed domain fact published after its transaction commits.
type Event struct {
	Name       string         `json:"name"`
	OccurredAt time.Time      `json:"occurred_at"`
	Attributes map[string]any `json:"attributes"`
}

// EventPublisher fans committed facts out to other services. Delivery is
// best-effort; a publish failure never undoes the committed state.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
