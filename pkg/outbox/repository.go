package outbox

import (
	"context"
	"time"
)

// Repository persists outbox messages
type Repository interface {
	Append(ctx context.Context, msg *Message) error
	// Due returns unpublished, non-abandoned messages whose next attempt is
	// not after now, oldest first.
	Due(ctx context.Context, now time.Time, limit int) ([]*Message, error)
	MarkPublished(ctx context.Context, id string, at time.Time) error
	// MarkFailed counts a failed attempt. A zero retryAt abandons the message.
	MarkFailed(ctx context.Context, id, reason string, retryAt time.Time) error
}
