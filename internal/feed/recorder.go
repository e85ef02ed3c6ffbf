// Package feed records an append-only log of user-visible mutations.
package feed

import (
	"context"
	"time"

	"github.com/filmrate/backend/internal/apperr"
	"github.com/filmrate/backend/internal/logging"
	"github.com/filmrate/backend/internal/models"
	"github.com/filmrate/backend/internal/repositories"
)

// Recorder appends feed events and reads a user's feed.
type Recorder struct {
	store repositories.Store
	now   func() time.Time
}

// NewRecorder returns a recorder writing to store. A nil clock uses time.Now.
func NewRecorder(store repositories.Store, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{store: store, now: now}
}

// In returns a recorder bound to tx so events commit with the surrounding mutation.
func (r *Recorder) In(tx repositories.Store) *Recorder {
	return &Recorder{store: tx, now: r.now}
}

// Record appends one event stamped with the current wall-clock time in milliseconds.
func (r *Recorder) Record(ctx context.Context, userID, entityID int64, eventType models.EventType, op models.Operation) (models.FeedEvent, error) {
	if !eventType.Valid() {
		return models.FeedEvent{}, apperr.Validation("unknown event type %q", eventType)
	}
	if !op.Valid() {
		return models.FeedEvent{}, apperr.Validation("unknown operation %q", op)
	}

	event, err := r.store.AppendEvent(ctx, models.FeedEvent{
		UserID:    userID,
		EntityID:  entityID,
		Timestamp: r.now().UnixMilli(),
		EventType: eventType,
		Operation: op,
	})
	if err != nil {
		return models.FeedEvent{}, repositories.Translate(err, "record %s %s event", eventType, op)
	}

	logging.FromContext(ctx).Debug("feed event recorded",
		"user_id", userID,
		"entity_id", entityID,
		"event_type", string(eventType),
		"operation", string(op),
	)
	return event, nil
}

// FeedFor returns every event of userID ordered by timestamp, then id.
func (r *Recorder) FeedFor(ctx context.Context, userID int64) ([]models.FeedEvent, error) {
	if _, err := r.store.FindUser(ctx, userID); err != nil {
		return nil, repositories.Translate(err, "user %d", userID)
	}
	events, err := r.store.EventsFor(ctx, userID)
	if err != nil {
		return nil, repositories.Translate(err, "feed of user %d", userID)
	}
	if events == nil {
		events = []models.FeedEvent{}
	}
	return events, nil
}
