package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/filmrate/backend/internal/db"
	"github.com/filmrate/backend/internal/models"
)

// querier is the statement surface shared by pooled connections and transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore provides PostgreSQL-backed persistence for the whole catalog.
type PostgresStore struct {
	pool   db.Pool
	policy db.RetryPolicy
	tx     pgx.Tx
}

// NewPostgresStore constructs a store backed by PostgreSQL. Transactions started
// through InTx are retried according to policy.
func NewPostgresStore(pool db.Pool, policy db.RetryPolicy) *PostgresStore {
	return &PostgresStore{pool: pool, policy: policy}
}

// InTx runs fn inside a serializable transaction.
func (s *PostgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	return db.RunInTx(ctx, s.pool, s.policy, func(tx pgx.Tx) error {
		return fn(&PostgresStore{pool: s.pool, policy: s.policy, tx: tx})
	})
}

func (s *PostgresStore) conn(ctx context.Context) (querier, func(), error) {
	if s.tx != nil {
		return s.tx, func() {}, nil
	}
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, conn.Release, nil
}

func mapWriteError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, ErrConflict)
		case "23503":
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func mapReadError(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *PostgresStore) queryIDs(ctx context.Context, op, sql string, args ...any) ([]int64, error) {
	q, release, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

func (s *PostgresStore) execAffected(ctx context.Context, op, sql string, args ...any) (int64, error) {
	q, release, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapWriteError(err, op)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) execExisting(ctx context.Context, op, sql string, args ...any) error {
	affected, err := s.execAffected(ctx, op, sql, args...)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) insertReturningID(ctx context.Context, op, sql string, args ...any) (int64, error) {
	q, release, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	var id int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, mapWriteError(err, op)
	}
	return id, nil
}

// CreateUser persists a new user record and returns its id.
func (s *PostgresStore) CreateUser(ctx context.Context, user models.User) (int64, error) {
	return s.insertReturningID(ctx, "insert user", `
        INSERT INTO users (email, login, name, birthday)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `, user.Email, user.Login, user.Name, user.Birthday)
}

// UpdateUser replaces an existing user record.
func (s *PostgresStore) UpdateUser(ctx context.Context, user models.User) error {
	return s.execExisting(ctx, "update user", `
        UPDATE users
        SET email = $2, login = $3, name = $4, birthday = $5
        WHERE id = $1
    `, user.ID, user.Email, user.Login, user.Name, user.Birthday)
}

// DeleteUser removes a user; likes, edges, reviews and votes cascade.
func (s *PostgresStore) DeleteUser(ctx context.Context, id int64) error {
	return s.execExisting(ctx, "delete user", `DELETE FROM users WHERE id = $1`, id)
}

// FindUser fetches a user by id.
func (s *PostgresStore) FindUser(ctx context.Context, id int64) (models.User, error) {
	q, release, err := s.conn(ctx)
	if err != nil {
		return models.User{}, err
	}
	defer release()

	row := q.QueryRow(ctx, `
        SELECT id, email, login, name, birthday
        FROM users
        WHERE id = $1
    `, id)

	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.Login, &user.Name, &user.Birthday); err != nil {
		return models.User{}, mapReadError(err, "select user")
	}
	return user, nil
}

// ListUsers returns every user ordered by id.
func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	q, release, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := q.Query(ctx, `
        SELECT id, email, login, name, birthday
        FROM users
        ORDER BY id
    `)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.Login, &user.Name, &user.Birthday); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// LockUsers takes row locks on the given users in ascending id order.
func (s *PostgresStore) LockUsers(ctx context.Context, ids ...int64) error {
	ids = sortedUnique(ids)
	if len(ids) == 0 {
		return nil
	}

	locked, err := s.queryIDs(ctx, "lock users", `
        SELECT id FROM users
        WHERE id = ANY($1)
        ORDER BY id
        FOR UPDATE
    `, ids)
	if err != nil {
		return err
	}
	if len(locked) != len(ids) {
		return fmt.Errorf("lock users: %w", ErrNotFound)
	}
	return nil
}

// AddEdge inserts a directional friendship edge.
func (s *PostgresStore) AddEdge(ctx context.Context, userID, friendID int64) (bool, error) {
	affected, err := s.execAffected(ctx, "insert friendship", `
        INSERT INTO friendships (user_id, friend_id, mutual)
        VALUES ($1, $2, false)
        ON CONFLICT (user_id, friend_id) DO NOTHING
    `, userID, friendID)
	return affected > 0, err
}

// RemoveEdge deletes a directional friendship edge.
func (s *PostgresStore) RemoveEdge(ctx context.Context, userID, friendID int64) (bool, error) {
	affected, err := s.execAffected(ctx, "delete friendship", `
        DELETE FROM friendships
        WHERE user_id = $1 AND friend_id = $2
    `, userID, friendID)
	return affected > 0, err
}

// SetMutual updates the mutual flag of an edge if it exists.
func (s *PostgresStore) SetMutual(ctx context.Context, userID, friendID int64, mutual bool) error {
	_, err := s.execAffected(ctx, "update friendship", `
        UPDATE friendships
        SET mutual = $3
        WHERE user_id = $1 AND friend_id = $2
    `, userID, friendID, mutual)
	return err
}

// FindEdge fetches a directional friendship edge.
func (s *PostgresStore) FindEdge(ctx context.Context, userID, friendID int64) (models.Friendship, error) {
	q, release, err := s.conn(ctx)
	if err != nil {
		return models.Friendship{}, err
	}
	defer release()

	var edge models.Friendship
	err = q.QueryRow(ctx, `
        SELECT user_id, friend_id, mutual
        FROM friendships
        WHERE user_id = $1 AND friend_id = $2
    `, userID, friendID).Scan(&edge.UserID, &edge.FriendID, &edge.Mutual)
	if err != nil {
		return models.Friendship{}, mapReadError(err, "select friendship")
	}
	return edge, nil
}

// FriendIDs lists the outbound friends of a user.
func (s *PostgresStore) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	return s.queryIDs(ctx, "query friends", `
        SELECT friend_id FROM friendships
        WHERE user_id = $1
        ORDER BY friend_id
    `, userID)
}

// CreateFilm persists the base film row and returns its id.
func (s *PostgresStore) CreateFilm(ctx context.Context, film models.Film) (int64, error) {
	return s.insertReturningID(ctx, "insert film", `
        INSERT INTO films (title, description, release_date, duration, mpa_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `, film.Title, film.Description, film.ReleaseDate, film.Duration, mpaID(film))
}

// UpdateFilm replaces the base film row.
func (s *PostgresStore) UpdateFilm(ctx context.Context, film models.Film) error {
	return s.execExisting(ctx, "update film", `
        UPDATE films
        SET title = $2, description = $3, release_date = $4, duration = $5, mpa_id = $6
        WHERE id = $1
    `, film.ID, film.Title, film.Description, film.ReleaseDate, film.Duration, mpaID(film))
}

// DeleteFilm removes a film; likes, links, reviews and votes cascade.
func (s *PostgresStore) DeleteFilm(ctx context.Context, id int64) error {
	return s.execExisting(ctx, "delete film", `DELETE FROM films WHERE id = $1`, id)
}

// FindFilm fetches a base film row by id.
func (s *PostgresStore) FindFilm(ctx context.Context, id int64) (models.Film, error) {
	q, release, err := s.conn(ctx)
	if err != nil {
		return models.Film{}, err
	}
	defer release()

	film, err := scanFilm(q.QueryRow(ctx, `
        SELECT id, title, description, release_date, duration, mpa_id
        FROM films
        WHERE id = $1
    `, id))
	if err != nil {
		return models.Film{}, mapReadError(err, "select film")
	}
	return film, nil
}

// ListFilms returns every base film row ordered by id.
func (s *PostgresStore) ListFilms(ctx context.Context) ([]models.Film, error) {
	q, release, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := q.Query(ctx, `
        SELECT id, title, description, release_date, duration, mpa_id
        FROM films
        ORDER BY id
    `)
	if err != nil {
		return nil, fmt.Errorf("query films: %w", err)
	}
	defer rows.Close()

	var films []models.Film
	for rows.Next() {
		film, err := scanFilm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan film: %w", err)
		}
		films = append(films, film)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate films: %w", err)
	}
	return films, nil
}

// FilmGenreIDs lists the genre ids linked to a film.
func (s *PostgresStore) FilmGenreIDs(ctx context.Context, filmID int64) ([]int64, error) {
	return s.queryIDs(ctx, "query film genres", `
        SELECT genre_id FROM film_genres
        WHERE film_id = $1
        ORDER BY genre_id
    `, filmID)
}

// ReplaceFilmGenres deletes a film's genre links and inserts the given ones.
func (s *PostgresStore) ReplaceFilmGenres(ctx context.Context, filmID int64, genreIDs []int64) error {
	if _, err := s.execAffected(ctx, "delete film genres", `DELETE FROM film_genres WHERE film_id = $1`, filmID); err != nil {
		return err
	}
	if len(genreIDs) == 0 {
		return nil
	}
	_, err := s.execAffected(ctx, "insert film genres", `
        INSERT INTO film_genres (film_id, genre_id)
        SELECT $1, unnest($2::BIGINT[])
        ON CONFLICT DO NOTHING
    `, filmID, genreIDs)
	return err
}

// FilmDirectorIDs lists the director ids linked to a film.
func (s *PostgresStore) FilmDirectorIDs(ctx context.Context, filmID int64) ([]int64, error) {
	return s.queryIDs(ctx, "query film directors", `
        SELECT director_id FROM film_directors
        WHERE film_id = $1
        ORDER BY director_id
    `, filmID)
}

// ReplaceFilmDirectors deletes a film's director links and inserts the given ones.
func (s *PostgresStore) ReplaceFilmDirectors(ctx context.Context, filmID int64, directorIDs []int64) error {
	if _, err := s.execAffected(ctx, "delete film directors", `DELETE FROM film_directors WHERE film_id = $1`, filmID); err != nil {
		return err
	}
	if len(directorIDs) == 0 {
		return nil
	}
	_, err := s.execAffected(ctx, "insert film directors", `
        INSERT INTO film_directors (film_id, director_id)
        SELECT $1, unnest($2::BIGINT[])
        ON CONFLICT DO NOTHING
    `, filmID, directorIDs)
	return err
}

// FilmIDsByDirector lists the films credited to a director.
func (s *PostgresStore) FilmIDsByDirector(ctx context.Context, directorID int64) ([]int64, error) {
	return s.queryIDs(ctx, "query director films", `
        SELECT film_id FROM film_directors
        WHERE director_id = $1
        ORDER BY film_id
    `, directorID)
}

// AddLike records that a user likes a film.
func (s *PostgresStore) AddLike(ctx context.Context, filmID, userID int64) (bool, error) {
	affected, err := s.execAffected(ctx, "insert like", `
        INSERT INTO likes (film_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT (film_id, user_id) DO NOTHING
    `, filmID, userID)
	return affected > 0, err
}

// RemoveLike deletes a like.
func (s *PostgresStore) RemoveLike(ctx context.Context, filmID, userID int64) (bool, error) {
	affected, err := s.execAffected(ctx, "delete like", `
        DELETE FROM likes
        WHERE film_id = $1 AND user_id = $2
    `, filmID, userID)
	return affected > 0, err
}

// FilmLikes lists the users who like a film.
func (s *PostgresStore) FilmLikes(ctx context.Context, filmID int64) ([]int64, error) {
	return s.queryIDs(ctx, "query film likes", `
        SELECT user_id FROM likes
        WHERE film_id = $1
        ORDER BY user_id
    `, filmID)
}

// UserLikes lists the films a user likes.
func (s *PostgresStore) UserLikes(ctx context.Context, userID int64) ([]int64, error) {
	return s.queryIDs(ctx, "query user likes", `
        SELECT film_id FROM likes
        WHERE user_id = $1
        ORDER BY film_id
    `, userID)
}

func (s *PostgresStore) namedRows(ctx context.Context, op, sql string, args ...any) ([]namedRow, error) {
	q, release, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[namedRow])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (s *PostgresStore) namedRow(ctx context.Context, op, sql string, id int64) (namedRow, error) {
	q, release, err := s.conn(ctx)
	if err != nil {
		return namedRow{}, err
	}
	defer release()

	var row namedRow
	if err := q.QueryRow(ctx, sql, id).Scan(&row.ID, &row.Name); err != nil {
		return namedRow{}, mapReadError(err, op)
	}
	return row, nil
}

// Genres lists every genre ordered by id.
func (s *PostgresStore) Genres(ctx context.Context) ([]models.Genre, error) {
	rows, err := s.namedRows(ctx, "query genres", `SELECT id, name FROM genres ORDER BY id`)
	if err != nil {
		return nil, err
	}
	genres := make([]models.Genre, 0, len(rows))
	for _, row := range rows {
		genres = append(genres, models.Genre(row))
	}
	return genres, nil
}

// Genre fetches a genre by id.
func (s *PostgresStore) Genre(ctx context.Context, id int64) (models.Genre, error) {
	row, err := s.namedRow(ctx, "select genre", `SELECT id, name FROM genres WHERE id = $1`, id)
	return models.Genre(row), err
}

// MpaRatings lists every MPA rating ordered by id.
func (s *PostgresStore) MpaRatings(ctx context.Context) ([]models.Mpa, error) {
	rows, err := s.namedRows(ctx, "query mpa", `SELECT id, name FROM mpa ORDER BY id`)
	if err != nil {
		return nil, err
	}
	ratings := make([]models.Mpa, 0, len(rows))
	for _, row := range rows {
		ratings = append(ratings, models.Mpa(row))
	}
	return ratings, nil
}

// Mpa fetches an MPA rating by id.
func (s *PostgresStore) Mpa(ctx context.Context, id int64) (models.Mpa, error) {
	row, err := s.namedRow(ctx, "select mpa", `SELECT id, name FROM mpa WHERE id = $1`, id)
	return models.Mpa(row), err
}

// Directors lists every director ordered by id.
func (s *PostgresStore) Directors(ctx context.Context) ([]models.Director, error) {
	rows, err := s.namedRows(ctx, "query directors", `SELECT id, name FROM directors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	directors := make([]models.Director, 0, len(rows))
	for _, row := range rows {
		directors = append(directors, models.Director(row))
	}
	return directors, nil
}

// Director fetches a director by id.
func (s *PostgresStore) Director(ctx context.Context, id int64) (models.Director, error) {
	row, err := s.namedRow(ctx, "select director", `SELECT id, name FROM directors WHERE id = $1`, id)
	return models.Director(row), err
}

// CreateDirector persists a director and returns its id.
func (s *PostgresStore) CreateDirector(ctx context.Context, director models.Director) (int64, error) {
	return s.insertReturningID(ctx, "insert director", `
        INSERT INTO directors (name) VALUES ($1)
        RETURNING id
    `, director.Name)
}

// UpdateDirector renames a director.
func (s *PostgresStore) UpdateDirector(ctx context.Context, director models.Director) error {
	return s.execExisting(ctx, "update director", `
        UPDATE directors SET name = $2 WHERE id = $1
    `, director.ID, director.Name)
}

// DeleteDirector removes a director; film links cascade.
func (s *PostgresStore) DeleteDirector(ctx context.Context, id int64) error {
	return s.execExisting(ctx, "delete director", `DELETE FROM directors WHERE id = $1`, id)
}

const reviewSelect = `
        SELECT r.id, r.content, r.is_positive, r.film_id, r.user_id,
               COALESCE(SUM(CASE WHEN v.useful THEN 1 WHEN v.useful IS NOT NULL THEN -1 ELSE 0 END), 0)::BIGINT
        FROM reviews r
        LEFT JOIN review_votes v ON v.review_id = r.id
`

const reviewGroup = `
        GROUP BY r.id, r.content, r.is_positive, r.film_id, r.user_id
`

// CreateReview persists a review and returns its id.
func (s *PostgresStore) CreateReview(ctx context.Context, review models.Review) (int64, error) {
	return s.insertReturningID(ctx, "insert review", `
        INSERT INTO reviews (content, is_positive, film_id, user_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `, review.Content, review.IsPositive, review.FilmID, review.UserID)
}

// UpdateReview replaces the content and polarity of a review.
func (s *PostgresStore) UpdateReview(ctx context.Context, review models.Review) error {
	return s.execExisting(ctx, "update review", `
        UPDATE reviews
        SET content = $2, is_positive = $3
        WHERE id = $1
    `, review.ID, review.Content, review.IsPositive)
}

// DeleteReview removes a review and its votes.
func (s *PostgresStore) DeleteReview(ctx context.Context, id int64) error {
	return s.execExisting(ctx, "delete review", `DELETE FROM reviews WHERE id = $1`, id)
}

// FindReview fetches a review with its current usefulness.
func (s *PostgresStore) FindReview(ctx context.Context, id int64) (models.Review, error) {
	q, release, err := s.conn(ctx)
	if err != nil {
		return models.Review{}, err
	}
	defer release()

	review, err := scanReview(q.QueryRow(ctx, reviewSelect+`WHERE r.id = $1`+reviewGroup, id))
	if err != nil {
		return models.Review{}, mapReadError(err, "select review")
	}
	return review, nil
}

// ListReviews returns reviews with their current usefulness ordered by id.
func (s *PostgresStore) ListReviews(ctx context.Context, filmID *int64) ([]models.Review, error) {
	q, release, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := q.Query(ctx, reviewSelect+`WHERE ($1::BIGINT IS NULL OR r.film_id = $1)`+reviewGroup+`ORDER BY r.id`, filmID)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}

// UpsertVote records or replaces a user's vote on a review.
func (s *PostgresStore) UpsertVote(ctx context.Context, vote models.ReviewVote) error {
	_, err := s.execAffected(ctx, "upsert review vote", `
        INSERT INTO review_votes (review_id, user_id, useful)
        VALUES ($1, $2, $3)
        ON CONFLICT (review_id, user_id) DO UPDATE SET useful = excluded.useful
    `, vote.ReviewID, vote.UserID, vote.Useful)
	return err
}

// DeleteVote removes a vote of the given polarity.
func (s *PostgresStore) DeleteVote(ctx context.Context, vote models.ReviewVote) (bool, error) {
	affected, err := s.execAffected(ctx, "delete review vote", `
        DELETE FROM review_votes
        WHERE review_id = $1 AND user_id = $2 AND useful = $3
    `, vote.ReviewID, vote.UserID, vote.Useful)
	return affected > 0, err
}

// AppendEvent stores a feed event, clamping its timestamp to the user's latest one.
func (s *PostgresStore) AppendEvent(ctx context.Context, event models.FeedEvent) (models.FeedEvent, error) {
	q, release, err := s.conn(ctx)
	if err != nil {
		return models.FeedEvent{}, err
	}
	defer release()

	err = q.QueryRow(ctx, `
        INSERT INTO feed_events (user_id, entity_id, ts, event_type, operation)
        SELECT $1::BIGINT, $2::BIGINT, GREATEST($3::BIGINT, COALESCE(MAX(ts), 0)), $4::TEXT, $5::TEXT
        FROM feed_events
        WHERE user_id = $1::BIGINT
        RETURNING id, ts
    `, event.UserID, event.EntityID, event.Timestamp, string(event.EventType), string(event.Operation)).Scan(&event.ID, &event.Timestamp)
	if err != nil {
		return models.FeedEvent{}, mapWriteError(err, "insert feed event")
	}
	return event, nil
}

// EventsFor lists a user's feed events in timestamp order.
func (s *PostgresStore) EventsFor(ctx context.Context, userID int64) ([]models.FeedEvent, error) {
	q, release, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := q.Query(ctx, `
        SELECT id, user_id, entity_id, ts, event_type, operation
        FROM feed_events
        WHERE user_id = $1
        ORDER BY ts, id
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query feed events: %w", err)
	}
	defer rows.Close()

	var events []models.FeedEvent
	for rows.Next() {
		var (
			event     models.FeedEvent
			eventType string
			operation string
		)
		if err := rows.Scan(&event.ID, &event.UserID, &event.EntityID, &event.Timestamp, &eventType, &operation); err != nil {
			return nil, fmt.Errorf("scan feed event: %w", err)
		}
		event.EventType = models.EventType(eventType)
		event.Operation = models.Operation(operation)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feed events: %w", err)
	}
	return events, nil
}

type namedRow struct {
	ID   int64
	Name string
}

func scanFilm(row pgx.Row) (models.Film, error) {
	var (
		film models.Film
		mpa  int64
	)
	if err := row.Scan(&film.ID, &film.Title, &film.Description, &film.ReleaseDate, &film.Duration, &mpa); err != nil {
		return models.Film{}, err
	}
	film.Mpa = &models.Mpa{ID: mpa}
	return film, nil
}

func scanReview(row pgx.Row) (models.Review, error) {
	var review models.Review
	if err := row.Scan(&review.ID, &review.Content, &review.IsPositive, &review.FilmID, &review.UserID, &review.Useful); err != nil {
		return models.Review{}, err
	}
	return review, nil
}

func mpaID(film models.Film) int64 {
	if film.Mpa == nil {
		return 0
	}
	return film.Mpa.ID
}

var _ Store = (*PostgresStore)(nil)
