package repositories

import (
	"context"

	"github.com/filmrate/backend/internal/models"
)

// FeedRepository defines data access for the append-only event log.
type FeedRepository interface {
	// AppendEvent stores the event and returns it with its id and effective
	// timestamp, which never precedes the user's latest stored event.
	AppendEvent(ctx context.Context, event models.FeedEvent) (models.FeedEvent, error)
	// EventsFor lists a user's events by timestamp, then id.
	EventsFor(ctx context.Context, userID int64) ([]models.FeedEvent, error)
}
