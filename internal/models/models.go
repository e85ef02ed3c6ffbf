package models

import "time"

// User represents an account within the Filmrate catalog.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email" validate:"required,email"`
	Login     string    `json:"login" validate:"required,nowhitespace"`
	Name      string    `json:"name"`
	Birthday  time.Time `json:"birthday" validate:"notfuture"`
	FriendIDs []int64   `json:"friends"`
}

// Film is a catalog entry enriched with its reference data and likers.
type Film struct {
	ID          int64      `json:"id"`
	Title       string     `json:"name" validate:"nonblank"`
	Description string     `json:"description" validate:"max=200"`
	ReleaseDate time.Time  `json:"releaseDate" validate:"releasedate"`
	Duration    int        `json:"duration" validate:"min=0"`
	Mpa         *Mpa       `json:"mpa" validate:"required"`
	Genres      []Genre    `json:"genres"`
	Directors   []Director `json:"directors"`
	Likes       []int64    `json:"likes"`
}

// Genre is a read-only catalog classification.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Mpa is a read-only MPA age rating.
type Mpa struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Director is a person credited on one or more films.
type Director struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"nonblank"`
}

// Review is a user's written opinion about a film.
type Review struct {
	ID         int64  `json:"id"`
	Content    string `json:"content" validate:"nonblank"`
	FilmID     int64  `json:"filmId"`
	UserID     int64  `json:"userId"`
	IsPositive *bool  `json:"isPositive" validate:"required"`
	Useful     int    `json:"useful"`
}

// Friendship is one directional edge of the social graph.
type Friendship struct {
	UserID   int64 `json:"userId"`
	FriendID int64 `json:"friendId"`
	Mutual   bool  `json:"mutual"`
}

// ReviewVote is a single user's usefulness rating of a review.
type ReviewVote struct {
	ReviewID int64 `json:"reviewId"`
	UserID   int64 `json:"userId"`
	Useful   bool  `json:"useful"`
}

// EventType classifies feed events.
type EventType string

// Operation describes what happened to the entity referenced by a feed event.
type Operation string

const (
	EventFriend EventType = "FRIEND"
	EventLike   EventType = "LIKE"
	EventReview EventType = "REVIEW"

	OperationAdd    Operation = "ADD"
	OperationRemove Operation = "REMOVE"
	OperationUpdate Operation = "UPDATE"
)

// Valid reports whether the event type is one the feed accepts.
func (e EventType) Valid() bool {
	switch e {
	case EventFriend, EventLike, EventReview:
		return true
	}
	return false
}

// Valid reports whether the operation is one the feed accepts.
func (o Operation) Valid() bool {
	switch o {
	case OperationAdd, OperationRemove, OperationUpdate:
		return true
	}
	return false
}

// FeedEvent is an immutable audit record of a user-visible mutation.
type FeedEvent struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	EntityID  int64     `json:"entityId"`
	Timestamp int64     `json:"timestamp"`
	EventType EventType `json:"eventType"`
	Operation Operation `json:"operation"`
}
